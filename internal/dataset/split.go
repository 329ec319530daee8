package dataset

import (
	"fmt"
	"strings"
)

// ParseSeparator maps the separator names accepted on the command line to the
// literal separator. Anything else is used verbatim as a custom separator.
func ParseSeparator(name string) (string, error) {
	switch strings.ToLower(name) {
	case "":
		return "", fmt.Errorf("separator must not be empty")
	case "tab", `\t`:
		return "\t", nil
	case "space":
		return " ", nil
	case "comma":
		return ",", nil
	case "semicolon":
		return ";", nil
	case "pipe":
		return "|", nil
	default:
		return name, nil
	}
}

// SplitColumn replaces column by the parts of each of its cells split on sep.
// The parts become <column>_part_1..<column>_part_k, appended after the
// remaining columns, where k is the largest number of parts in any row.
// Shorter rows are padded with empty cells.
func (r *Raw) SplitColumn(column, sep string) error {
	if sep == "" {
		return fmt.Errorf("split %q: separator must not be empty", column)
	}
	idx := -1
	for i, h := range r.Header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("split: column %q not found (available: %s)", column, strings.Join(r.Header, ", "))
	}
	name := r.Header[idx]

	parts := make([][]string, len(r.Rows))
	width := 0
	for i, row := range r.Rows {
		var cell string
		if idx < len(row) {
			cell = row[idx]
		}
		if strings.TrimSpace(cell) != "" {
			parts[i] = strings.Split(cell, sep)
		}
		width = max(width, len(parts[i]))
	}

	header := make([]string, 0, len(r.Header)-1+width)
	header = append(header, r.Header[:idx]...)
	header = append(header, r.Header[idx+1:]...)
	for k := 1; k <= width; k++ {
		header = append(header, fmt.Sprintf("%s_part_%d", name, k))
	}

	for i, row := range r.Rows {
		out := make([]string, 0, len(header))
		for j := range r.Header {
			if j == idx {
				continue
			}
			if j < len(row) {
				out = append(out, row[j])
			} else {
				out = append(out, "")
			}
		}
		for k := 0; k < width; k++ {
			if k < len(parts[i]) {
				out = append(out, parts[i][k])
			} else {
				out = append(out, "")
			}
		}
		r.Rows[i] = out
	}
	r.Header = header
	return nil
}
