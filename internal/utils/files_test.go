package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/KaramelBytes/basketloom/internal/utils"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "d1", "orders.csv")
	b := filepath.Join(dir, "d2", "orders.csv")
	c := filepath.Join(dir, "notes.txt")
	touch(t, a)
	touch(t, b)
	touch(t, c)

	got, err := utils.ExpandInputs([]string{filepath.Join(dir, "d*", "orders.csv"), c, a})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{a, b, c}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := utils.ExpandInputs([]string{filepath.Join(dir, "*.xlsx")}); !errors.Is(err, utils.ErrNoInputs) {
		t.Fatalf("err = %v, want ErrNoInputs", err)
	}
}

func TestSafeWriteFileAndUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out", "rules.md")
	if got := utils.UniquePath(p); got != p {
		t.Fatalf("UniquePath on fresh path = %q", got)
	}
	if err := utils.SafeWriteFile(p, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "hello" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	if got, want := utils.UniquePath(p), filepath.Join(dir, "out", "rules__2.md"); got != want {
		t.Fatalf("UniquePath = %q, want %q", got, want)
	}
}
