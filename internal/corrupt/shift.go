package corrupt

import (
	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// categoricalShift remaps the selected cells of each categorical column
// through a derangement of the column's frequency ranking, so every
// remapped cell changes value. Columns with fewer than two distinct values
// are left as they are.
type categoricalShift struct {
	pooled
}

func (s *categoricalShift) apply(rc *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error) {
	positions, err := positionsOf(t, rows)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range cols {
		col, err := mustColumn(t, name)
		if err != nil {
			return nil, nil, err
		}
		ranking := col.Ranking()
		if len(ranking) < 2 {
			continue
		}
		shifted, err := repro.Derangement(rc, ranking)
		if err != nil {
			return nil, nil, err
		}
		mapping := make(map[table.Cell]table.Cell, len(ranking))
		for i, from := range ranking {
			mapping[from] = shifted[i]
		}

		for _, p := range positions {
			if cell := col.Get(p); !cell.Null {
				col.Set(p, mapping[cell])
			}
		}
	}
	return t, rows, nil
}

// labelError is a categorical shift confined to the target column,
// whatever the column fraction says.
type labelError struct {
	categoricalShift
}

func (l *labelError) selectColumns(_ *repro.Context, t *table.Table, _ float64) ([]string, error) {
	target := t.Target()
	if target == "" {
		return nil, newConfigError(ErrCodeNoTarget, "label error requires a target column")
	}
	pool, err := l.policy.Pool(t)
	if err != nil {
		return nil, err
	}
	for _, name := range pool {
		if name == target {
			return []string{target}, nil
		}
	}
	// numeric target: nothing eligible
	return []string{}, nil
}
