package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/basketloom/internal/dataset"
	"github.com/KaramelBytes/basketloom/internal/mining"
)

// Options controls what a report includes.
type Options struct {
	// TopN limits each "top rules" section; 0 uses 10.
	TopN int
	// MaxItemsets and MaxRules cap the full listings; 0 means all.
	MaxItemsets int
	MaxRules    int
}

// DefaultOptions returns the report settings used by the CLI.
func DefaultOptions() Options {
	return Options{TopN: 10}
}

// Report is the presentation view of one mining run.
type Report struct {
	ID        string
	Name      string
	Rows      int
	Processed int
	Warnings  []string

	Params   mining.Params
	N        int
	Levels   []mining.LevelStats
	Itemsets []mining.FrequentItemset
	Rules    []mining.Rule
	Outcome  mining.Outcome

	opt Options
}

// New builds a report from the loaded table and the analysis performed on it.
// raw may be nil when transactions did not come from a file.
func New(raw *dataset.Raw, a *mining.Analysis, opt Options) *Report {
	if opt.TopN <= 0 {
		opt.TopN = 10
	}
	r := &Report{
		ID:      uuid.NewString(),
		Params:  a.Params,
		Outcome: a.Outcome(),
		opt:     opt,
	}
	if raw != nil {
		r.Name = raw.Name
		r.Rows = raw.Total
		r.Processed = raw.Processed
		r.Warnings = append(r.Warnings, raw.Warnings...)
	}
	if a.Itemsets != nil {
		r.N = a.Itemsets.N
		r.Levels = a.Itemsets.Levels
		r.Itemsets = a.Itemsets.Itemsets
	}
	if a.Rules != nil {
		r.Rules = a.Rules.Rules
	}
	return r
}

// Top returns the opt.TopN highest rules by m.
func (r *Report) Top(m mining.Metric) []mining.Rule {
	return mining.Rank(r.Rules, m, r.opt.TopN)
}

// Markdown renders the report as bracketed plain-text sections suitable for
// pasting into notes or another tool.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[MINING SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.ID))
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Processed > 0 && r.Processed < r.Rows {
		b.WriteString(fmt.Sprintf("Transactions: %d (processed %d of ~%d rows)\n", r.N, r.Processed, r.Rows))
	} else {
		b.WriteString(fmt.Sprintf("Transactions: %d\n", r.N))
	}
	b.WriteString(fmt.Sprintf("Thresholds: support >= %.2f, confidence >= %.2f, lift >= %.2f\n",
		r.Params.MinSupport, r.Params.MinConfidence, r.Params.MinLift))
	if r.Params.MaxLen > 0 {
		b.WriteString(fmt.Sprintf("Max itemset size: %d\n", r.Params.MaxLen))
	}
	for _, l := range r.Levels {
		b.WriteString(fmt.Sprintf("- level %d: %d candidates, %d pruned, %d frequent\n", l.K, l.Generated, l.Pruned, l.Frequent))
	}
	b.WriteString(fmt.Sprintf("Frequent itemsets: %d\n", len(r.Itemsets)))
	b.WriteString(fmt.Sprintf("Rules: %d\n", len(r.Rules)))

	if len(r.Itemsets) > 0 {
		b.WriteString("\n[FREQUENT ITEMSETS]\n")
		b.WriteString("| itemsets | support | count |\n")
		b.WriteString("| --- | --- | --- |\n")
		for i, f := range r.Itemsets {
			if r.opt.MaxItemsets > 0 && i >= r.opt.MaxItemsets {
				b.WriteString(fmt.Sprintf("… %d more\n", len(r.Itemsets)-i))
				break
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %d |\n", safeCell(f.Items.String()), FormatFloat(f.Support), f.Count))
		}
	}

	if len(r.Rules) > 0 {
		b.WriteString("\n[ASSOCIATION RULES]\n")
		writeRuleRows(&b, r.Rules, r.opt.MaxRules)
		for _, m := range mining.ChartMetrics {
			b.WriteString(fmt.Sprintf("\n[TOP RULES BY %s]\n", strings.ToUpper(string(m))))
			for i, rule := range r.Top(m) {
				b.WriteString(fmt.Sprintf("%d. %s (%s %s)\n", i+1, rule.Label(), m, FormatFloat(rule.Value(m))))
			}
		}
	}

	if notes := r.notes(); len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func writeRuleRows(b *strings.Builder, rules []mining.Rule, limit int) {
	b.WriteString("| antecedents | consequents | support | confidence | lift | leverage | conviction | zhang |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for i, r := range rules {
		if limit > 0 && i >= limit {
			b.WriteString(fmt.Sprintf("… %d more\n", len(rules)-i))
			return
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			safeCell(r.Antecedent.String()), safeCell(r.Consequent.String()),
			FormatFloat(r.Support), FormatFloat(r.Confidence), FormatFloat(r.Lift),
			FormatFloat(r.Leverage), FormatFloat(r.Conviction), FormatFloat(r.Zhang)))
	}
}

func (r *Report) notes() []string {
	notes := append([]string(nil), r.Warnings...)
	if r.Outcome.Empty() {
		notes = append(notes, r.Outcome.Guidance())
	}
	return notes
}

// FormatFloat prints metrics with four decimals and "inf" for unbounded
// conviction.
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	return fmt.Sprintf("%.4f", v)
}

func safeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
