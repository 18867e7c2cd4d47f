package corrupt

import (
	"fmt"

	"github.com/roach88/synq/internal/table"
)

// Applicability declares which columns a strategy may touch.
type Applicability int

const (
	// Any allows every column.
	Any Applicability = iota + 1
	// NumericOnly allows numeric columns only.
	NumericOnly
	// CategoricalOnly allows categorical columns only.
	CategoricalOnly
)

func (a Applicability) String() string {
	switch a {
	case Any:
		return "any"
	case NumericOnly:
		return "numeric_only"
	case CategoricalOnly:
		return "categorical_only"
	default:
		return fmt.Sprintf("Applicability(%d)", int(a))
	}
}

// Pool returns the names of t's columns eligible under a, in declaration order.
func (a Applicability) Pool(t *table.Table) ([]string, error) {
	switch a {
	case Any:
		return t.ColumnNames(), nil
	case NumericOnly:
		return t.NumericColumns(), nil
	case CategoricalOnly:
		return t.CategoricalColumns(), nil
	default:
		return nil, fmt.Errorf("%w: %s (valid: any, numeric_only, categorical_only)", ErrUnknownApplicability, a)
	}
}
