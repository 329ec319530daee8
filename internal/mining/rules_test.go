package mining

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRule(rules []Rule, label string) (Rule, bool) {
	for _, r := range rules {
		if r.Label() == label {
			return r, true
		}
	}
	return Rule{}, false
}

func TestDeriveBasketScenario(t *testing.T) {
	res := mustMine(t, Encode(basketRows()), 0.4)
	rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: 0.5, MinLift: 1.0})
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, rs.Outcome)
	assert.Equal(t, 2, rs.Considered)

	_, ok := findRule(rs.Rules, "A → B")
	assert.False(t, ok, "A → B has lift 0.833 and must be excluded at min_lift=1")

	bc, ok := findRule(rs.Rules, "B → C")
	require.True(t, ok)
	assert.InDelta(t, 0.4, bc.Support, 1e-12)
	assert.InDelta(t, 0.5, bc.Confidence, 1e-12)
	assert.InDelta(t, 1.25, bc.Lift, 1e-12)
	assert.InDelta(t, 0.8, bc.AntecedentSupport, 1e-12)
	assert.InDelta(t, 0.4, bc.ConsequentSupport, 1e-12)
	assert.InDelta(t, 0.4-0.8*0.4, bc.Leverage, 1e-12)
	assert.InDelta(t, (1-0.4)/(1-0.5), bc.Conviction, 1e-12)

	cb, ok := findRule(rs.Rules, "C → B")
	require.True(t, ok)
	assert.InDelta(t, 1.0, cb.Confidence, 1e-12)
	assert.True(t, math.IsInf(cb.Conviction, 1))
	assert.Len(t, rs.Rules, 2)
}

func TestDeriveManualMetricsForAB(t *testing.T) {
	res := mustMine(t, Encode(basketRows()), 0.4)
	rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: 0.01, MinLift: 0.01})
	require.NoError(t, err)
	require.Len(t, rs.Rules, 4)

	ab, ok := findRule(rs.Rules, "A → B")
	require.True(t, ok)
	// support(AB)=2/5, support(A)=3/5, support(B)=4/5
	assert.InDelta(t, 2.0/3.0, ab.Confidence, 1e-12)
	assert.InDelta(t, (2.0/3.0)/0.8, ab.Lift, 1e-12)

	ba, ok := findRule(rs.Rules, "B → A")
	require.True(t, ok)
	assert.InDelta(t, 0.5, ba.Confidence, 1e-12)
	assert.InDelta(t, 0.5/0.6, ba.Lift, 1e-12)
}

func TestDeriveThresholdsAreInclusive(t *testing.T) {
	res := mustMine(t, Encode(basketRows()), 0.4)
	rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: 0.5, MinLift: 1.25})
	require.NoError(t, err)
	_, ok := findRule(rs.Rules, "B → C")
	assert.True(t, ok, "confidence exactly 0.5 and lift exactly 1.25 are kept")
}

func TestDeriveInsufficientItemsetSize(t *testing.T) {
	// mutually exclusive items: no pair ever co-occurs
	rows := [][]string{{"A"}, {"B"}, {"C"}, {"A"}, {"B"}, {"C"}}
	res := mustMine(t, Encode(rows), 0.3)
	require.Len(t, res.Itemsets, 3)

	rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: 0.1, MinLift: 0.1})
	require.NoError(t, err)
	assert.Empty(t, rs.Rules)
	assert.Equal(t, OutcomeInsufficientItemsetSize, rs.Outcome)
	assert.NotEmpty(t, rs.Outcome.Guidance())
}

func TestDeriveNoRules(t *testing.T) {
	res := mustMine(t, Encode(basketRows()), 0.4)
	rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: 1, MinLift: 5})
	require.NoError(t, err)
	assert.Empty(t, rs.Rules)
	assert.Equal(t, OutcomeNoRules, rs.Outcome)
}

func TestDeriveRejectsInvalidParameters(t *testing.T) {
	res := mustMine(t, Encode(basketRows()), 0.4)
	cases := []struct {
		name string
		p    RuleParams
		bad  string
	}{
		{"zero confidence", RuleParams{MinConfidence: 0, MinLift: 1}, "min_confidence"},
		{"confidence above one", RuleParams{MinConfidence: 1.5, MinLift: 1}, "min_confidence"},
		{"zero lift", RuleParams{MinConfidence: 0.5, MinLift: 0}, "min_lift"},
		{"negative lift", RuleParams{MinConfidence: 0.5, MinLift: -1}, "min_lift"},
		{"nan lift", RuleParams{MinConfidence: 0.5, MinLift: math.NaN()}, "min_lift"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Derive(context.Background(), res, tc.p)
			var pe *InvalidParameterError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.bad, pe.Name)
		})
	}
}

func TestDeriveReportsConsistencyError(t *testing.T) {
	// {A,B} without {B}: impossible from Mine, constructed by hand.
	res := &Result{
		N: 4,
		Itemsets: []FrequentItemset{
			{Items: Itemset{"A"}, Count: 2, Support: 0.5},
			{Items: Itemset{"A", "B"}, Count: 2, Support: 0.5},
		},
		index: map[string]int{},
	}
	for i, fi := range res.Itemsets {
		res.index[fi.Items.key()] = i
	}
	_, err := Derive(context.Background(), res, RuleParams{MinConfidence: 0.1, MinLift: 0.1})
	var ce *ConsistencyError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, 2, ce.Level)
	assert.Equal(t, Itemset{"A", "B"}, ce.Itemset)
	assert.Equal(t, Itemset{"B"}, ce.Missing)
	assert.Contains(t, ce.Error(), "level 2")
}

func TestDeriveHonoursCancellation(t *testing.T) {
	res := mustMine(t, Encode(basketRows()), 0.4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rs, err := Derive(ctx, res, RuleParams{MinConfidence: 0.1, MinLift: 0.1})
	assert.Nil(t, rs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeriveDeterministic(t *testing.T) {
	tbl := Encode(randomRows(11, 120, 8, 0.5))
	a := mustMine(t, tbl, 0.1)
	b := mustMine(t, tbl, 0.1)
	p := RuleParams{MinConfidence: 0.3, MinLift: 0.8}
	ra, err := Derive(context.Background(), a, p)
	require.NoError(t, err)
	rb, err := Derive(context.Background(), b, p)
	require.NoError(t, err)
	assert.Equal(t, ra.Rules, rb.Rules)
}

func TestRankSortsDescendingWithLabelTieBreak(t *testing.T) {
	rules := []Rule{
		{Antecedent: Itemset{"b"}, Consequent: Itemset{"x"}, Lift: 2},
		{Antecedent: Itemset{"a"}, Consequent: Itemset{"x"}, Lift: 2},
		{Antecedent: Itemset{"c"}, Consequent: Itemset{"x"}, Lift: 3},
		{Antecedent: Itemset{"d"}, Consequent: Itemset{"x"}, Lift: 1},
	}
	top := Rank(rules, MetricLift, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "c → x", top[0].Label())
	assert.Equal(t, "a → x", top[1].Label())
	assert.Equal(t, "b → x", top[2].Label())
	assert.Equal(t, "b → x", rules[0].Label(), "input order is untouched")

	all := Rank(rules, MetricLift, 0)
	assert.Len(t, all, 4)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric(" Lift ")
	require.NoError(t, err)
	assert.Equal(t, MetricLift, m)
	_, err = ParseMetric("zscore")
	assert.Error(t, err)
}

func TestDeriveKeepsRulesExactlyAtConfidenceThreshold(t *testing.T) {
	cases := []struct {
		name    string
		rows    [][]string
		minConf float64
		label   string
	}{
		// conf(A → C) = 3/4 with N=5
		{"three quarters", [][]string{{"A", "C"}, {"A", "C"}, {"A", "C"}, {"A"}, {"B"}}, 0.75, "A → C"},
		// conf(A → C) = 1/5 with N=6
		{"one fifth", [][]string{{"A", "C"}, {"A"}, {"A"}, {"A"}, {"A"}, {"B"}}, 0.2, "A → C"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := mustMine(t, Encode(tc.rows), 0.1)
			rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: tc.minConf, MinLift: 0.1})
			require.NoError(t, err)
			r, ok := findRule(rs.Rules, tc.label)
			require.True(t, ok, "%s must be kept at min_confidence=%v", tc.label, tc.minConf)
			assert.Equal(t, tc.minConf, r.Confidence)
		})
	}
}

func TestDeriveKeepsRulesExactlyAtLiftThreshold(t *testing.T) {
	// lift(B → C) = (2/5) / ((4/5)(2/5)) = 1.25
	res := mustMine(t, Encode(basketRows()), 0.4)
	rs, err := Derive(context.Background(), res, RuleParams{MinConfidence: 0.1, MinLift: 1.25})
	require.NoError(t, err)
	r, ok := findRule(rs.Rules, "B → C")
	require.True(t, ok)
	assert.Equal(t, 1.25, r.Lift)
}
