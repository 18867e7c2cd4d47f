package corrupt

import (
	"gonum.org/v1/gonum/stat"

	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// gaussianNoise adds N(0, (scale*std)^2) to the selected cells of each
// numeric column, where std is the column's population standard deviation
// and scale is drawn once per column.
type gaussianNoise struct {
	pooled
	opts Options
}

func (g *gaussianNoise) apply(rc *repro.Context, t *table.Table, rows []int64, cols []string) (*table.Table, []int64, error) {
	positions, err := positionsOf(t, rows)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range cols {
		col, err := mustColumn(t, name)
		if err != nil {
			return nil, nil, err
		}
		present := col.Floats()
		if len(present) == 0 {
			continue
		}
		std := stat.PopStdDev(present, nil)

		scale, err := rc.Uniform(g.opts.NoiseScaleMin, g.opts.NoiseScaleMax, 1)
		if err != nil {
			return nil, nil, err
		}
		noise, err := rc.Normal(0, scale[0]*std, len(positions))
		if err != nil {
			return nil, nil, err
		}

		for i, p := range positions {
			if v, ok := col.Float(p); ok {
				col.SetFloat(p, v+noise[i])
			}
		}
	}
	return t, rows, nil
}
