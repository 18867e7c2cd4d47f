package corrupt

import (
	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// placeholder writes an implicit missing value: a sentinel string in
// categorical cells and a sentinel number in numeric cells.
type placeholder struct {
	pooled
	opts Options
}

func (p *placeholder) apply(_ *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error) {
	return setCells(t, rows, cols, func(col *table.Column, pos int) {
		setImplicitMissing(col, pos, p.opts)
	})
}

func setImplicitMissing(col *table.Column, pos int, opts Options) {
	switch col.Kind() {
	case table.Numeric:
		col.SetFloat(pos, opts.NumericMissing)
	case table.Categorical:
		col.SetString(pos, opts.CategoricalMissing)
	}
}

// explicitMissing nulls the selected cells.
type explicitMissing struct {
	pooled
}

func (e *explicitMissing) apply(_ *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error) {
	return setCells(t, rows, cols, func(col *table.Column, pos int) {
		col.SetNull(pos)
	})
}

// setCells runs set on every selected (row, column) cell.
func setCells(t *table.Table, rows []int64, cols []string, set func(*table.Column, int)) (*table.Table, []int64, error) {
	positions, err := positionsOf(t, rows)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range cols {
		col, err := mustColumn(t, name)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range positions {
			set(col, p)
		}
	}
	return t, rows, nil
}
