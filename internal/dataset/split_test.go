package dataset

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitColumn(t *testing.T) {
	raw := &Raw{
		Header: []string{"order", "items", "store"},
		Rows: [][]string{
			{"1", "bread;milk", "north"},
			{"2", "beer;diapers;bread", "south"},
			{"3", "", "north"},
		},
	}
	if err := raw.SplitColumn("Items", ";"); err != nil {
		t.Fatalf("split: %v", err)
	}
	wantHeader := []string{"order", "store", "items_part_1", "items_part_2", "items_part_3"}
	if !reflect.DeepEqual(raw.Header, wantHeader) {
		t.Fatalf("header = %#v", raw.Header)
	}
	want := [][]string{
		{"1", "north", "bread", "milk", ""},
		{"2", "south", "beer", "diapers", "bread"},
		{"3", "north", "", "", ""},
	}
	if !reflect.DeepEqual(raw.Rows, want) {
		t.Fatalf("rows = %#v", raw.Rows)
	}
}

func TestSplitColumnUnknown(t *testing.T) {
	raw := &Raw{Header: []string{"a", "b"}, Rows: [][]string{{"x", "y"}}}
	err := raw.SplitColumn("c", ",")
	if err == nil || !strings.Contains(err.Error(), `column "c" not found`) {
		t.Fatalf("err = %v", err)
	}
	if err := raw.SplitColumn("a", ""); err == nil {
		t.Fatal("expected error for empty separator")
	}
}

func TestParseSeparator(t *testing.T) {
	cases := map[string]string{
		",":         ",",
		";":         ";",
		"|":         "|",
		"tab":       "\t",
		"TAB":       "\t",
		"space":     " ",
		"semicolon": ";",
		"::":        "::",
	}
	for in, want := range cases {
		got, err := ParseSeparator(in)
		if err != nil {
			t.Fatalf("ParseSeparator(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseSeparator(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseSeparator(""); err == nil {
		t.Fatal("expected error for empty separator")
	}
}
