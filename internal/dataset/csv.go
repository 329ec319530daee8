package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string, opt Options) (*Raw, error) {
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited file into a Raw table.
func LoadCSV(path string, opt Options) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path), sniffOrDefault(path, opt))
}

// ReadCSV reads delimited rows from r. opt.Delimiter must be set.
func ReadCSV(r io.Reader, name string, opt Options) (*Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = opt.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}

	rc := newRowCollector(name, opt)
	line := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		rc.add(rec)
	}
	return rc.finish(), nil
}

func sniffOrDefault(path string, opt Options) Options {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return opt
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	// Default to comma; the extension is the only hint used so the file is read once.
	return ','
}
