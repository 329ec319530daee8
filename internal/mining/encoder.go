package mining

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Table is a boolean transaction table: one column per item in sorted order,
// one row per transaction. Each column is stored as a bitset over transaction
// indexes so that support counting is a popcount over intersections.
// A Table is read-only once built and safe for concurrent readers.
type Table struct {
	items []string
	index map[string]int
	cols  []*bitset.BitSet
	n     int
}

// N returns the number of transactions.
func (t *Table) N() int { return t.n }

// Width returns the vocabulary size.
func (t *Table) Width() int { return len(t.items) }

// Items returns a copy of the sorted item vocabulary.
func (t *Table) Items() []string {
	out := make([]string, len(t.items))
	copy(out, t.items)
	return out
}

// Has reports whether transaction row contains item.
func (t *Table) Has(row int, item string) bool {
	j, ok := t.index[item]
	if !ok || row < 0 || row >= t.n {
		return false
	}
	return t.cols[j].Test(uint(row))
}

// Column returns a copy of the transaction bitset for item, or nil if the
// item is not in the vocabulary.
func (t *Table) Column(item string) *bitset.BitSet {
	j, ok := t.index[item]
	if !ok {
		return nil
	}
	return t.cols[j].Clone()
}

// Count returns the number of transactions containing every item of s.
func (t *Table) Count(s Itemset) int {
	if len(s) == 0 {
		return t.n
	}
	var acc *bitset.BitSet
	for _, it := range s {
		j, ok := t.index[it]
		if !ok {
			return 0
		}
		if acc == nil {
			acc = t.cols[j].Clone()
			continue
		}
		acc.InPlaceIntersection(t.cols[j])
	}
	return int(acc.Count())
}

// Rows materializes the table as a row-major boolean matrix.
func (t *Table) Rows() [][]bool {
	out := make([][]bool, t.n)
	for i := range out {
		row := make([]bool, len(t.items))
		for j, col := range t.cols {
			row[j] = col.Test(uint(i))
		}
		out[i] = row
	}
	return out
}

// Transaction returns the sorted items present in row.
func (t *Table) Transaction(row int) Itemset {
	var out Itemset
	for j, col := range t.cols {
		if col.Test(uint(row)) {
			out = append(out, t.items[j])
		}
	}
	return out
}

// WriteCSV writes the table with an item header and 1/0 cells. The output
// can be read back through EncodeBinary.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.items); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.items))
	for i := 0; i < t.n; i++ {
		for j, col := range t.cols {
			if col.Test(uint(i)) {
				rec[j] = "1"
			} else {
				rec[j] = "0"
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func newTable(items []string, n int) *Table {
	t := &Table{
		items: items,
		index: make(map[string]int, len(items)),
		cols:  make([]*bitset.BitSet, len(items)),
		n:     n,
	}
	for j, it := range items {
		t.index[it] = j
		t.cols[j] = bitset.New(uint(n))
	}
	return t
}

// Encode converts raw item rows into a Table. Cells are trimmed; blank cells
// are dropped and repeated items within a row count once. The vocabulary is
// the sorted set of all remaining values, so equal input always yields an
// equal table. A row with no items becomes an all-false transaction.
func Encode(rows [][]string) *Table {
	vocab := map[string]struct{}{}
	clean := make([][]string, len(rows))
	for i, row := range rows {
		for _, cell := range row {
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			clean[i] = append(clean[i], v)
			vocab[v] = struct{}{}
		}
	}
	items := make([]string, 0, len(vocab))
	for it := range vocab {
		items = append(items, it)
	}
	sort.Strings(items)

	t := newTable(items, len(rows))
	for i, row := range clean {
		for _, v := range row {
			t.cols[t.index[v]].Set(uint(i))
		}
	}
	return t
}

// BinaryMode selects how EncodeBinary treats cells that are not recognisably
// true or false.
type BinaryMode int

const (
	// BinaryLenient maps anything other than "1"/"true" to false.
	BinaryLenient BinaryMode = iota
	// BinaryStrict rejects cells other than 1/0/true/false/blank.
	BinaryStrict
)

// ParseBinaryMode accepts "lenient" or "strict".
func ParseBinaryMode(s string) (BinaryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return BinaryLenient, nil
	case "strict":
		return BinaryStrict, nil
	default:
		return BinaryLenient, fmt.Errorf("unknown binary mode %q (use lenient|strict)", s)
	}
}

func truthy(cell string) (value bool, known bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true":
		return true, true
	case "0", "false", "":
		return false, true
	default:
		return false, false
	}
}

// EncodeBinary builds a Table from data that is already one-hot encoded:
// header names are the items and each cell marks presence. Columns are
// reordered into sorted item order so both encoding paths agree on shape.
func EncodeBinary(header []string, rows [][]string, mode BinaryMode) (*Table, error) {
	names := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for j, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has a blank header", ErrInvalidParameter, j+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidParameter, name)
		}
		seen[name] = struct{}{}
		names[j] = name
	}
	items := make([]string, len(names))
	copy(items, names)
	sort.Strings(items)

	t := newTable(items, len(rows))
	for i, row := range rows {
		for j, name := range names {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			v, known := truthy(cell)
			if !known && mode == BinaryStrict {
				return nil, &InvalidCellError{Row: i, Column: name, Value: cell}
			}
			if v {
				t.cols[t.index[name]].Set(uint(i))
			}
		}
	}
	return t, nil
}
