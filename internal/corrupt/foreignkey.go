package corrupt

import (
	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// skewedForeignKey forces 1 - rowFraction of all rows to the column's most
// frequent value, leaving rowFraction of the rows as they were. The rows
// reported are the ones forced to the common value.
type skewedForeignKey struct {
	pooled
	rowFraction float64
}

func (s *skewedForeignKey) apply(rc *repro.Context, t *table.Table, _ []int64, cols []string) (*table.Table, []int64, error) {
	affected := []int64{}
	for _, name := range cols {
		col, err := mustColumn(t, name)
		if err != nil {
			return nil, nil, err
		}
		common, ok := col.Mode()
		if !ok {
			continue
		}

		keys, err := repro.SampleFrom(rc, t.Index(), (1-s.rowFraction)*float64(t.Len()))
		if err != nil {
			return nil, nil, err
		}
		positions, err := positionsOf(t, keys)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range positions {
			col.Set(p, common)
		}
		affected = unionKeys(affected, keys)
	}
	return t, affected, nil
}

// orphanedForeignKey nulls the selected references so they point nowhere.
type orphanedForeignKey struct {
	pooled
}

func (o *orphanedForeignKey) apply(_ *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error) {
	return setCells(t, rows, cols, func(col *table.Column, pos int) {
		col.SetNull(pos)
	})
}
