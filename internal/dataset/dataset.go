package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how a transaction file is read.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, chosen by file extension.
	Delimiter rune
	// HasHeader treats the first row as column names. Without a header,
	// columns are named col_1..col_n.
	HasHeader bool
	// ItemSeparator splits each line of a basket text file into items.
	ItemSeparator string
	// XLSX sheet selection: name wins over the 1-based index.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for transaction files.
func DefaultOptions() Options {
	return Options{
		HasHeader:     true,
		ItemSeparator: ",",
		SheetIndex:    1,
	}
}

// Raw is a rectangular table of cells as read from disk, before encoding.
type Raw struct {
	Name      string
	Header    []string
	Rows      [][]string
	Total     int
	Processed int
	Warnings  []string
}

// Cells returns the data rows for raw-item encoding.
func (r *Raw) Cells() [][]string { return r.Rows }

// Width returns the number of columns.
func (r *Raw) Width() int { return len(r.Header) }

// Loader reads one file format into a Raw table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*Raw, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no registered loader accepts the file.
var ErrUnsupported = errors.New("unsupported transaction file format")

// Load selects a loader by filename and reads the file.
func Load(path string, opt Options) (*Raw, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(basketLoader{})
}

// rowCollector applies header handling, padding and MaxRows uniformly across
// loaders.
type rowCollector struct {
	raw     *Raw
	opt     Options
	maxRows int
	started bool
}

func newRowCollector(name string, opt Options) *rowCollector {
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = int(^uint(0) >> 1)
	}
	return &rowCollector{raw: &Raw{Name: name}, opt: opt, maxRows: maxRows}
}

func (c *rowCollector) add(rec []string) {
	if !c.started {
		c.started = true
		if c.opt.HasHeader {
			c.raw.Header = make([]string, len(rec))
			for i, h := range rec {
				c.raw.Header[i] = strings.TrimSpace(h)
			}
			return
		}
		c.raw.Header = generatedHeader(len(rec))
	}
	c.raw.Total++
	if c.raw.Processed >= c.maxRows {
		return
	}
	c.raw.Processed++
	row := make([]string, max(len(rec), len(c.raw.Header)))
	copy(row, rec)
	if len(row) > len(c.raw.Header) {
		// Widen the header for ragged rows instead of dropping cells.
		for i := len(c.raw.Header); i < len(row); i++ {
			c.raw.Header = append(c.raw.Header, fmt.Sprintf("col_%d", i+1))
		}
		for i := range c.raw.Rows {
			if len(c.raw.Rows[i]) < len(row) {
				tmp := make([]string, len(row))
				copy(tmp, c.raw.Rows[i])
				c.raw.Rows[i] = tmp
			}
		}
	}
	c.raw.Rows = append(c.raw.Rows, row)
}

func (c *rowCollector) finish() *Raw {
	if c.raw.Processed < c.raw.Total {
		c.raw.Warnings = append(c.raw.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", c.raw.Processed, c.raw.Total))
	}
	return c.raw
}

func generatedHeader(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("col_%d", i+1)
	}
	return h
}
