package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// basketLoader reads plain text with one transaction per line, e.g.
//
//	bread, milk
//	beer, diapers, bread
//
// Lines are split on Options.ItemSeparator. Basket files never have a header.
type basketLoader struct{}

func (basketLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".basket")
}

func (basketLoader) Load(path string, opt Options) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open basket file: %w", err)
	}
	defer f.Close()

	sep := opt.ItemSeparator
	if sep == "" {
		sep = ","
	}
	opt.HasHeader = false
	rc := newRowCollector(filepath.Base(path), opt)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if t := strings.TrimSpace(line); t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		rc.add(strings.Split(line, sep))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read basket file: %w", err)
	}
	return rc.finish(), nil
}
