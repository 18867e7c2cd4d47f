package corrupt

import (
	"fmt"
	"slices"

	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// Result is the outcome of one corruption.
type Result struct {
	// Table is the corrupted copy. The input table is never modified.
	Table *table.Table
	// Rows holds the row keys of the corrupted rows, in Table's key space.
	Rows []int64
	// Columns holds the names of the corrupted columns.
	Columns []string
}

// NoEligibleColumns reports a semantic no-op: no column could be corrupted,
// so Table equals the input.
func (r *Result) NoEligibleColumns() bool {
	return len(r.Columns) == 0
}

// strategy is implemented once per Kind.
type strategy interface {
	applicability() Applicability
	selectColumns(rc *repro.Context, t *table.Table, fraction float64) ([]string, error)
	apply(rc *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error)
}

// Corruptor applies one Kind of corruption sized by a Spec.
type Corruptor struct {
	kind     Kind
	spec     Spec
	strategy strategy
}

// New builds a Corruptor. Invalid specs fail with a *ConfigError; declared but
// unimplemented kinds fail with ErrNotImplemented.
func New(kind Kind, spec Spec) (*Corruptor, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var s strategy
	switch kind {
	case GaussianNoise:
		s = &gaussianNoise{pooled: pooled{NumericOnly}, opts: spec.Options}
	case CategoricalShift:
		s = &categoricalShift{pooled: pooled{CategoricalOnly}}
	case LabelError:
		s = &labelError{categoricalShift{pooled: pooled{CategoricalOnly}}}
	case Placeholder:
		s = &placeholder{pooled: pooled{Any}, opts: spec.Options}
	case ExplicitMissingValue:
		s = &explicitMissing{pooled: pooled{Any}}
	case NearDuplicateRow:
		s = &nearDuplicate{pooled: pooled{Any}, opts: spec.Options}
	case SkewedForeignKey:
		s = &skewedForeignKey{pooled: pooled{Any}, rowFraction: spec.RowFraction}
	case OrphanedForeignKey:
		s = &orphanedForeignKey{pooled: pooled{Any}}
	case ClassImbalance, TyposSwappedLetters:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, kind)
	default:
		return nil, fmt.Errorf("unknown corruption kind %d", int(kind))
	}

	return &Corruptor{kind: kind, spec: spec, strategy: s}, nil
}

// Kind returns the corruption kind.
func (c *Corruptor) Kind() Kind { return c.kind }

// Spec returns the sizing spec.
func (c *Corruptor) Spec() Spec { return c.spec }

// Applicability returns the column policy of the underlying strategy.
func (c *Corruptor) Applicability() Applicability { return c.strategy.applicability() }

// Corrupt deep-copies t, samples rows and eligible columns from rc and
// applies the strategy to the copy.
func (c *Corruptor) Corrupt(rc *repro.Context, t *table.Table) (*Result, error) {
	out := t.Clone()

	rows, err := repro.SampleFrom(rc, out.Index(), c.spec.RowFraction*float64(out.Len()))
	if err != nil {
		return nil, fmt.Errorf("%s: select rows: %w", c.kind, err)
	}

	cols, err := c.strategy.selectColumns(rc, out, c.spec.ColumnFraction)
	if err != nil {
		return nil, fmt.Errorf("%s: select columns: %w", c.kind, err)
	}
	if len(cols) == 0 {
		return &Result{Table: out, Rows: []int64{}, Columns: []string{}}, nil
	}

	corrupted, affected, err := c.strategy.apply(rc, out, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: apply: %w", c.kind, err)
	}
	return &Result{Table: corrupted, Rows: affected, Columns: cols}, nil
}

// pooled selects columns by sampling the applicability pool.
type pooled struct {
	policy Applicability
}

func (p pooled) applicability() Applicability { return p.policy }

func (p pooled) selectColumns(rc *repro.Context, t *table.Table, fraction float64) ([]string, error) {
	pool, err := p.policy.Pool(t)
	if err != nil {
		return nil, err
	}
	return repro.SampleFrom(rc, pool, fraction*float64(len(pool)))
}

// positionsOf resolves row keys and fails loudly on keys the table lacks.
func positionsOf(t *table.Table, rows []int64) ([]int, error) {
	return t.Positions(rows)
}

// mustColumn looks up a column that column selection already vetted.
func mustColumn(t *table.Table, name string) (*table.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return col, nil
}

// unionKeys appends keys not already present in dst, keeping first-seen order.
func unionKeys(dst, keys []int64) []int64 {
	for _, k := range keys {
		if !slices.Contains(dst, k) {
			dst = append(dst, k)
		}
	}
	return dst
}
