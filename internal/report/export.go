package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/basketloom/internal/mining"
)

type jsonRule struct {
	mining.Rule
	// nil encodes unbounded conviction, which JSON numbers cannot carry.
	Conviction *float64 `json:"conviction"`
}

type jsonReport struct {
	ID           string                   `json:"id"`
	File         string                   `json:"file,omitempty"`
	Transactions int                      `json:"transactions"`
	Params       jsonParams               `json:"params"`
	Outcome      string                   `json:"outcome"`
	Guidance     string                   `json:"guidance,omitempty"`
	Levels       []mining.LevelStats      `json:"levels"`
	Itemsets     []mining.FrequentItemset `json:"itemsets"`
	Rules        []jsonRule               `json:"rules"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

type jsonParams struct {
	MinSupport    float64 `json:"min_support"`
	MinConfidence float64 `json:"min_confidence"`
	MinLift       float64 `json:"min_lift"`
	MaxLen        int     `json:"max_len,omitempty"`
}

// WriteJSON writes the full report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{
		ID:           r.ID,
		File:         r.Name,
		Transactions: r.N,
		Params: jsonParams{
			MinSupport:    r.Params.MinSupport,
			MinConfidence: r.Params.MinConfidence,
			MinLift:       r.Params.MinLift,
			MaxLen:        r.Params.MaxLen,
		},
		Outcome:  r.Outcome.String(),
		Levels:   r.Levels,
		Itemsets: r.Itemsets,
		Rules:    make([]jsonRule, 0, len(r.Rules)),
		Warnings: r.Warnings,
	}
	if r.Outcome.Empty() {
		out.Guidance = r.Outcome.Guidance()
	}
	if out.Levels == nil {
		out.Levels = []mining.LevelStats{}
	}
	if out.Itemsets == nil {
		out.Itemsets = []mining.FrequentItemset{}
	}
	for _, rule := range r.Rules {
		jr := jsonRule{Rule: rule}
		if !math.IsInf(rule.Conviction, 0) && !math.IsNaN(rule.Conviction) {
			c := rule.Conviction
			jr.Conviction = &c
		}
		out.Rules = append(out.Rules, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var ruleCSVHeader = []string{
	"antecedents", "consequents", "antecedent_support", "consequent_support",
	"support", "confidence", "lift", "leverage", "conviction", "zhangs_metric",
}

// WriteCSV writes one row per rule. Itemsets inside a cell are joined with
// ", " and conviction is written as "inf" when unbounded.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ruleCSVHeader); err != nil {
		return err
	}
	for _, rule := range r.Rules {
		rec := []string{
			rule.Antecedent.String(),
			rule.Consequent.String(),
			csvFloat(rule.AntecedentSupport),
			csvFloat(rule.ConsequentSupport),
			csvFloat(rule.Support),
			csvFloat(rule.Confidence),
			csvFloat(rule.Lift),
			csvFloat(rule.Leverage),
			csvFloat(rule.Conviction),
			csvFloat(rule.Zhang),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write rule %s: %w", rule.Label(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteItemsetsCSV writes one row per frequent itemset.
func (r *Report) WriteItemsetsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"itemsets", "support", "count"}); err != nil {
		return err
	}
	for _, f := range r.Itemsets {
		if err := cw.Write([]string{f.Items.String(), csvFloat(f.Support), strconv.Itoa(f.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
