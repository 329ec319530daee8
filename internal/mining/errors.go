package mining

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter matches every *InvalidParameterError via errors.Is.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError reports a threshold outside its valid domain.
// It is returned before any computation starts.
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// ConsistencyError means a subset of a frequent itemset was not itself found
// frequent. That can only come from a bug in candidate generation; callers
// must treat it as fatal.
type ConsistencyError struct {
	Level   int
	Itemset Itemset
	Missing Itemset
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error at level %d: itemset {%s} has no frequent record for subset {%s}",
		e.Level, e.Itemset, e.Missing)
}

// InvalidCellError is returned by strict binary encoding for cells that are
// neither truthy nor falsy.
type InvalidCellError struct {
	Row    int
	Column string
	Value  string
}

func (e *InvalidCellError) Error() string {
	return fmt.Sprintf("row %d, column %q: value %q is not a binary cell (expected 1/0/true/false)", e.Row+1, e.Column, e.Value)
}

// Outcome distinguishes the empty results a run can end with, so callers can
// point the user at the threshold that needs changing.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeNoItemsets: nothing reached the minimum support.
	OutcomeNoItemsets
	// OutcomeInsufficientItemsetSize: only 1-itemsets are frequent, so no rule can be formed.
	OutcomeInsufficientItemsetSize
	// OutcomeNoRules: itemsets exist but no rule met confidence and lift.
	OutcomeNoRules
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoItemsets:
		return "no_itemsets"
	case OutcomeInsufficientItemsetSize:
		return "insufficient_itemset_size"
	case OutcomeNoRules:
		return "no_rules"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Guidance returns the message shown to the user for an empty outcome.
func (o Outcome) Guidance() string {
	switch o {
	case OutcomeNoItemsets:
		return "No frequent itemsets found. Try lowering the minimum support."
	case OutcomeInsufficientItemsetSize:
		return "No association rules can be generated because there are no itemsets with 2 or more items."
	case OutcomeNoRules:
		return "No rules found. Try lowering the confidence or lift thresholds."
	default:
		return ""
	}
}

// Empty reports whether the outcome carries no results to display.
func (o Outcome) Empty() bool { return o != OutcomeOK }
