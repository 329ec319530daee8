package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	cfgpkg "github.com/KaramelBytes/basketloom/internal/config"
	"github.com/KaramelBytes/basketloom/internal/dataset"
	"github.com/KaramelBytes/basketloom/internal/mining"
	"github.com/KaramelBytes/basketloom/internal/report"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// miningFlags holds the flags shared by mine and mine-batch.
type miningFlags struct {
	minSupport    float64
	minConfidence float64
	minLift       float64
	maxLen        int
	workers       int

	binary      bool
	strict      bool
	noHeader    bool
	delimiter   string
	itemSep     string
	maxRows     int
	sheetName   string
	sheetIndex  int
	splitColumn string
	splitSep    string

	format     string
	top        int
	rankBy     string
	charts     bool
	chartWidth int
}

func (f *miningFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.minSupport, "min-support", 0, "minimum support in (0,1] (default from config, 0.2)")
	fs.Float64Var(&f.minConfidence, "min-confidence", 0, "minimum confidence in (0,1] (default from config, 0.5)")
	fs.Float64Var(&f.minLift, "min-lift", 0, "minimum lift > 0 (default from config, 1.0)")
	fs.IntVar(&f.maxLen, "max-len", 0, "maximum itemset size (0 = unlimited)")
	fs.IntVar(&f.workers, "workers", 0, "parallel support counters (0 = GOMAXPROCS)")
	f.registerInput(fs)

	fs.StringVar(&f.format, "format", "", "output format: md | table | json | csv (default from config, md)")
	fs.IntVar(&f.top, "top", 0, "rules per top-N section and chart (default from config, 10)")
	fs.StringVar(&f.rankBy, "rank-by", "", "sort the rule listing by support | confidence | lift | leverage | conviction")
	fs.BoolVar(&f.charts, "charts", false, "print top-N bar charts for support, confidence and lift")
	fs.IntVar(&f.chartWidth, "chart-width", 0, "bar chart width in cells (default from config, 40)")
}

// registerInput adds only the flags that control reading and encoding.
func (f *miningFlags) registerInput(fs *pflag.FlagSet) {
	fs.BoolVar(&f.binary, "binary", false, "treat the file as an already one-hot encoded 0/1 matrix")
	fs.BoolVar(&f.strict, "strict", false, "with --binary, reject cells other than 0/1/true/false/blank")
	fs.BoolVar(&f.noHeader, "no-header", false, "first row is data, not column names")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default by extension)")
	fs.StringVar(&f.itemSep, "item-sep", "", "item separator for basket text files (default from config, ',')")
	fs.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process; 0 reads every row (default from config, 0)")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fs.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.StringVar(&f.splitColumn, "split-column", "", "split this column into <column>_part_N columns before encoding")
	fs.StringVar(&f.splitSep, "split-sep", ",", "separator for --split-column: ',' | ';' | '|' | 'tab' | 'space' | custom")
}

// mineSettings is the resolved view of flags layered over config.
type mineSettings struct {
	params     mining.Params
	load       dataset.Options
	binary     bool
	mode       mining.BinaryMode
	splitCol   string
	splitSep   string
	format     string
	topN       int
	rankBy     mining.Metric
	charts     bool
	chartWidth int
}

// resolve applies flags that were set on top of config values. Thresholds
// are validated here so a bad flag fails before any file is read.
func (f *miningFlags) resolve(fs *pflag.FlagSet, c *cfgpkg.Global) (mineSettings, error) {
	s := mineSettings{
		params: mining.Params{
			MinSupport:    c.MinSupport,
			MinConfidence: c.MinConfidence,
			MinLift:       c.MinLift,
			MaxLen:        c.MaxLen,
			Workers:       c.Workers,
		},
		load:       dataset.DefaultOptions(),
		binary:     !c.UseEncoder,
		format:     c.OutputFormat,
		topN:       c.TopN,
		charts:     f.charts,
		chartWidth: c.ChartWidth,
	}
	if fs.Changed("min-support") {
		s.params.MinSupport = f.minSupport
	}
	if fs.Changed("min-confidence") {
		s.params.MinConfidence = f.minConfidence
	}
	if fs.Changed("min-lift") {
		s.params.MinLift = f.minLift
	}
	if fs.Changed("max-len") {
		s.params.MaxLen = f.maxLen
	}
	if fs.Changed("workers") {
		s.params.Workers = f.workers
	}
	if err := s.params.Validate(); err != nil {
		return s, err
	}

	if fs.Changed("binary") {
		s.binary = f.binary
	}
	strict := c.StrictBinary
	if fs.Changed("strict") {
		strict = f.strict
	}
	if strict {
		s.mode = mining.BinaryStrict
	}

	if c.MaxRows > 0 {
		s.load.MaxRows = c.MaxRows
	}
	if fs.Changed("max-rows") {
		s.load.MaxRows = f.maxRows
	}
	s.load.HasHeader = !f.noHeader
	if c.ItemSeparator != "" {
		s.load.ItemSeparator = c.ItemSeparator
	}
	if f.itemSep != "" {
		sep, err := dataset.ParseSeparator(f.itemSep)
		if err != nil {
			return s, fmt.Errorf("--item-sep: %w", err)
		}
		s.load.ItemSeparator = sep
	}
	if f.delimiter != "" {
		d, err := parseDelimiter(f.delimiter)
		if err != nil {
			return s, err
		}
		s.load.Delimiter = d
	}
	s.load.SheetName = f.sheetName
	s.load.SheetIndex = f.sheetIndex

	if f.splitColumn != "" {
		sep, err := dataset.ParseSeparator(f.splitSep)
		if err != nil {
			return s, fmt.Errorf("--split-sep: %w", err)
		}
		s.splitCol, s.splitSep = f.splitColumn, sep
	}

	if f.format != "" {
		s.format = f.format
	}
	s.format = strings.ToLower(strings.TrimSpace(s.format))
	switch s.format {
	case "", "md", "markdown":
		s.format = "md"
	case "table", "json", "csv":
	default:
		return s, fmt.Errorf("unsupported --format: %s (use md|table|json|csv)", s.format)
	}
	if fs.Changed("top") {
		s.topN = f.top
	}
	if s.topN <= 0 {
		s.topN = 10
	}
	if f.rankBy != "" {
		m, err := mining.ParseMetric(f.rankBy)
		if err != nil {
			return s, fmt.Errorf("--rank-by: %w", err)
		}
		s.rankBy = m
	}
	if fs.Changed("chart-width") {
		s.chartWidth = f.chartWidth
	}
	return s, nil
}

func parseDelimiter(v string) (rune, error) {
	switch strings.ToLower(v) {
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", v)
}

// loadTable reads path and encodes it into a boolean transaction table.
func loadTable(path string, s mineSettings) (*dataset.Raw, *mining.Table, error) {
	raw, err := dataset.Load(path, s.load)
	if err != nil {
		return nil, nil, err
	}
	if s.splitCol != "" {
		if err := raw.SplitColumn(s.splitCol, s.splitSep); err != nil {
			return nil, nil, err
		}
	}
	if s.binary {
		t, err := mining.EncodeBinary(raw.Header, raw.Rows, s.mode)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", raw.Name, err)
		}
		return raw, t, nil
	}
	return raw, mining.Encode(raw.Cells()), nil
}

// mineFile runs the whole pipeline for one file and returns its report.
func mineFile(ctx context.Context, path string, s mineSettings, logger *zap.Logger) (*report.Report, error) {
	raw, t, err := loadTable(path, s)
	if err != nil {
		return nil, err
	}
	logger.Debug("encoded transactions",
		zap.String("file", raw.Name),
		zap.Int("transactions", t.N()),
		zap.Int("items", t.Width()))
	a, err := mining.Run(ctx, t, s.params, logger)
	if err != nil {
		return nil, fmt.Errorf("mine %s: %w", raw.Name, err)
	}
	if s.rankBy != "" && a.Rules != nil {
		a.Rules.Rules = mining.Rank(a.Rules.Rules, s.rankBy, 0)
	}
	opt := report.DefaultOptions()
	opt.TopN = s.topN
	return report.New(raw, a, opt), nil
}

// renderReport writes rep in the selected format, followed by charts when
// requested for human-readable formats.
func renderReport(w io.Writer, rep *report.Report, s mineSettings) error {
	switch s.format {
	case "json":
		return rep.WriteJSON(w)
	case "csv":
		if len(rep.Rules) == 0 && len(rep.Itemsets) > 0 {
			return rep.WriteItemsetsCSV(w)
		}
		return rep.WriteCSV(w)
	case "table":
		if err := rep.WriteTable(w); err != nil {
			return err
		}
	default:
		if _, err := io.WriteString(w, rep.Markdown()); err != nil {
			return err
		}
	}
	if s.charts {
		for _, m := range mining.ChartMetrics {
			if c := rep.Chart(m, s.topN, s.chartWidth); c != "" {
				_, _ = fmt.Fprintf(w, "\n%s\n", c)
			}
		}
	}
	return nil
}

func renderToBytes(rep *report.Report, s mineSettings) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderReport(&buf, rep, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
