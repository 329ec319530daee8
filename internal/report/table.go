package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteTable renders the summary, itemsets and rules as terminal tables.
func (r *Report) WriteTable(w io.Writer) error {
	if r.Name != "" {
		_, _ = fmt.Fprintf(w, "File: %s\n", r.Name)
	}
	_, _ = fmt.Fprintf(w, "Transactions: %d  itemsets: %d  rules: %d\n\n", r.N, len(r.Itemsets), len(r.Rules))

	if len(r.Itemsets) > 0 {
		t := newTable(w)
		t.SetTitle("Frequent itemsets")
		t.AppendHeader(table.Row{"itemsets", "support", "count"})
		for i, f := range r.Itemsets {
			if r.opt.MaxItemsets > 0 && i >= r.opt.MaxItemsets {
				break
			}
			t.AppendRow(table.Row{f.Items.String(), FormatFloat(f.Support), f.Count})
		}
		t.SetCaption("(%d itemsets)", len(r.Itemsets))
		t.Render()
		_, _ = fmt.Fprintln(w)
	}

	if len(r.Rules) > 0 {
		t := newTable(w)
		t.SetTitle("Association rules")
		t.AppendHeader(table.Row{"rule", "support", "confidence", "lift", "leverage", "conviction", "zhang"})
		for i, rule := range r.Rules {
			if r.opt.MaxRules > 0 && i >= r.opt.MaxRules {
				break
			}
			t.AppendRow(table.Row{
				rule.Label(),
				FormatFloat(rule.Support), FormatFloat(rule.Confidence), FormatFloat(rule.Lift),
				FormatFloat(rule.Leverage), FormatFloat(rule.Conviction), FormatFloat(rule.Zhang),
			})
		}
		t.SetCaption("(%d rules)", len(r.Rules))
		t.Render()
		_, _ = fmt.Fprintln(w)
	}

	for _, n := range r.notes() {
		_, _ = fmt.Fprintf(w, "⚠ %s\n", n)
	}
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	numeric := text.AlignRight
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: numeric},
		{Number: 3, Align: numeric},
		{Number: 4, Align: numeric},
		{Number: 5, Align: numeric},
		{Number: 6, Align: numeric},
		{Number: 7, Align: numeric},
	})
	return t
}
