package mining

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// RuleArrow separates antecedent and consequent in rule labels.
const RuleArrow = " → "

// RuleParams configures rule derivation.
type RuleParams struct {
	// MinConfidence is inclusive, in (0,1].
	MinConfidence float64
	// MinLift is inclusive, > 0.
	MinLift float64
	Logger  *zap.Logger
}

// Rule is a directional association A → C derived from a frequent itemset A∪C.
type Rule struct {
	Antecedent        Itemset `json:"antecedents"`
	Consequent        Itemset `json:"consequents"`
	AntecedentSupport float64 `json:"antecedent_support"`
	ConsequentSupport float64 `json:"consequent_support"`
	Support           float64 `json:"support"`
	Confidence        float64 `json:"confidence"`
	Lift              float64 `json:"lift"`
	Leverage          float64 `json:"leverage"`
	// Conviction is +Inf when confidence is 1.
	Conviction float64 `json:"-"`
	Zhang      float64 `json:"zhangs_metric"`
}

// Label renders the rule as "A, B → C".
func (r Rule) Label() string {
	return r.Antecedent.String() + RuleArrow + r.Consequent.String()
}

// RuleSet is the terminal output of one Derive call.
type RuleSet struct {
	Rules []Rule
	// Considered counts itemsets of size >= 2 that were expanded into rules.
	Considered int
	Outcome    Outcome
}

func validateRuleParams(p RuleParams) error {
	if !(p.MinConfidence > 0 && p.MinConfidence <= 1) {
		return &InvalidParameterError{Name: "min_confidence", Value: p.MinConfidence, Reason: "must be in (0,1]"}
	}
	if !(p.MinLift > 0) || math.IsInf(p.MinLift, 1) {
		return &InvalidParameterError{Name: "min_lift", Value: p.MinLift, Reason: "must be a finite value > 0"}
	}
	return nil
}

// maxRuleItemset bounds the subset enumeration mask.
const maxRuleItemset = 62

// Derive enumerates every split of each frequent itemset with two or more
// items into antecedent and consequent, and keeps the rules whose confidence
// and lift both meet their thresholds. Supports of both sides are read from
// res; a missing side means res violates the subset closure property and is
// reported as a *ConsistencyError.
//
// ctx is checked between itemsets; a cancelled derivation returns no rules.
func Derive(ctx context.Context, res *Result, p RuleParams) (*RuleSet, error) {
	if err := validateRuleParams(p); err != nil {
		return nil, err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := &RuleSet{}
	if res == nil {
		out.Outcome = OutcomeInsufficientItemsetSize
		return out, nil
	}
	for _, fi := range res.Itemsets {
		k := len(fi.Items)
		if k < 2 {
			continue
		}
		if k > maxRuleItemset {
			return nil, fmt.Errorf("itemset {%s} has %d items; rule derivation supports at most %d", fi.Items, k, maxRuleItemset)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rule derivation aborted: %w", err)
		}
		out.Considered++
		full := uint64(1)<<uint(k) - 1
		for mask := uint64(1); mask < full; mask++ {
			ante, cons := splitByMask(fi.Items, mask)
			a, ok := res.Lookup(ante)
			if !ok {
				return nil, &ConsistencyError{Level: k, Itemset: fi.Items, Missing: ante}
			}
			c, ok := res.Lookup(cons)
			if !ok {
				return nil, &ConsistencyError{Level: k, Itemset: fi.Items, Missing: cons}
			}
			r := newRule(ante, cons, res.N, fi, a, c)
			if r.Confidence >= p.MinConfidence && r.Lift >= p.MinLift {
				out.Rules = append(out.Rules, r)
			}
		}
	}
	switch {
	case out.Considered == 0:
		out.Outcome = OutcomeInsufficientItemsetSize
	case len(out.Rules) == 0:
		out.Outcome = OutcomeNoRules
	}
	log.Debug("rules derived",
		zap.Int("itemsets", out.Considered),
		zap.Int("rules", len(out.Rules)),
		zap.Stringer("outcome", out.Outcome))
	return out, nil
}

// splitByMask puts items whose bit is set into the antecedent. Both halves
// stay sorted because items is.
func splitByMask(items Itemset, mask uint64) (ante, cons Itemset) {
	for i, it := range items {
		if mask&(1<<uint(i)) != 0 {
			ante = append(ante, it)
		} else {
			cons = append(cons, it)
		}
	}
	return ante, cons
}

// newRule derives the metrics of ante → cons from the records a and c of
// both sides and ac of their union. Confidence and lift are taken from the
// integer counts with a single rounding each.
func newRule(ante, cons Itemset, n int, ac, a, c FrequentItemset) Rule {
	sAC, sA, sC := ac.Support, a.Support, c.Support
	conf := float64(ac.Count) / float64(a.Count)
	lift := float64(ac.Count) * float64(n) / (float64(a.Count) * float64(c.Count))
	leverage := sAC - sA*sC
	conviction := math.Inf(1)
	if conf < 1 {
		conviction = (1 - sC) / (1 - conf)
	}
	var zhang float64
	if denom := math.Max(sAC*(1-sA), sA*(sC-sAC)); denom > 0 {
		zhang = leverage / denom
	}
	return Rule{
		Antecedent:        ante,
		Consequent:        cons,
		AntecedentSupport: sA,
		ConsequentSupport: sC,
		Support:           sAC,
		Confidence:        conf,
		Lift:              lift,
		Leverage:          leverage,
		Conviction:        conviction,
		Zhang:             zhang,
	}
}

// Metric names a rule measure used for ranking.
type Metric string

const (
	MetricSupport    Metric = "support"
	MetricConfidence Metric = "confidence"
	MetricLift       Metric = "lift"
	MetricLeverage   Metric = "leverage"
	MetricConviction Metric = "conviction"
)

// ChartMetrics are the measures plotted by default, in display order.
var ChartMetrics = []Metric{MetricSupport, MetricConfidence, MetricLift}

// ParseMetric accepts a metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricSupport, MetricConfidence, MetricLift, MetricLeverage, MetricConviction:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q (use support|confidence|lift|leverage|conviction)", s)
	}
}

// Value returns the rule's measure for m.
func (r Rule) Value(m Metric) float64 {
	switch m {
	case MetricSupport:
		return r.Support
	case MetricConfidence:
		return r.Confidence
	case MetricLift:
		return r.Lift
	case MetricLeverage:
		return r.Leverage
	case MetricConviction:
		return r.Conviction
	default:
		return math.NaN()
	}
}

// Rank returns a copy of rules sorted by m descending, ties broken by label
// ascending, truncated to topN when topN > 0. The input is not modified.
func Rank(rules []Rule, m Metric, topN int) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i].Value(m), out[j].Value(m)
		if vi != vj {
			return vi > vj
		}
		return out[i].Label() < out[j].Label()
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
