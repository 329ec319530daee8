package mining

import (
	"context"

	"go.uber.org/zap"
)

// Params bundles every threshold of a mining run. It is passed explicitly so
// concurrent runs never share mutable configuration.
type Params struct {
	MinSupport    float64
	MinConfidence float64
	MinLift       float64
	MaxLen        int
	Workers       int
}

// DefaultParams mirrors the defaults offered to interactive users.
func DefaultParams() Params {
	return Params{
		MinSupport:    0.2,
		MinConfidence: 0.5,
		MinLift:       1.0,
	}
}

// Validate checks all thresholds so a run fails before any scan starts.
func (p Params) Validate() error {
	if err := validateSupport(p.MinSupport); err != nil {
		return err
	}
	return validateRuleParams(RuleParams{MinConfidence: p.MinConfidence, MinLift: p.MinLift})
}

// Analysis is the output of a full run.
type Analysis struct {
	Params   Params
	Itemsets *Result
	Rules    *RuleSet
}

// Outcome reports the first empty stage of the run, or OutcomeOK.
func (a *Analysis) Outcome() Outcome {
	if a.Itemsets == nil || a.Itemsets.Outcome.Empty() {
		return OutcomeNoItemsets
	}
	if a.Rules == nil {
		return OutcomeInsufficientItemsetSize
	}
	return a.Rules.Outcome
}

// Run validates p, mines t and derives rules from the result. Rule
// derivation is skipped when mining found nothing.
func Run(ctx context.Context, t *Table, p Params, log *zap.Logger) (*Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	res, err := Mine(ctx, t, MineParams{MinSupport: p.MinSupport, MaxLen: p.MaxLen, Workers: p.Workers, Logger: log})
	if err != nil {
		return nil, err
	}
	a := &Analysis{Params: p, Itemsets: res}
	if res.Outcome.Empty() {
		return a, nil
	}
	rules, err := Derive(ctx, res, RuleParams{MinConfidence: p.MinConfidence, MinLift: p.MinLift, Logger: log})
	if err != nil {
		return nil, err
	}
	a.Rules = rules
	return a, nil
}
