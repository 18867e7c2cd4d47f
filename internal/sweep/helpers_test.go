package sweep_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/dataset"
	"github.com/roach88/synq/internal/identity"
	"github.com/roach88/synq/internal/plan"
	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/sweep"
	"github.com/roach88/synq/internal/table"
)

// memorySource serves fixed datasets by name.
type memorySource map[string]*dataset.Dataset

func (m memorySource) Load(_ context.Context, name string) (*dataset.Dataset, error) {
	ds, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrNotFound, name)
	}
	return ds, nil
}

func toyDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	n := 20
	ages := make([]float64, n)
	labels := make([]string, n)
	for i := range n {
		ages[i] = float64(20 + i)
		labels[i] = []string{"yes", "no", "maybe"}[i%3]
	}
	tbl, err := table.New(table.NewNumeric("age", ages), table.NewCategorical("label", labels))
	require.NoError(t, err)
	require.NoError(t, tbl.SetTarget("label"))
	return &dataset.Dataset{
		Name:     "toy",
		Table:    tbl,
		Metadata: dataset.Metadata{TargetFeature: "label", CategoricalFeatures: []string{"label"}},
	}
}

func numericDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	tbl, err := table.New(
		table.NewNumeric("x", []float64{1, 2, 3, 4, 5}),
		table.NewNumeric("y", []float64{5, 4, 3, 2, 1}),
	)
	require.NoError(t, err)
	return &dataset.Dataset{Name: "numbers", Table: tbl}
}

func mustEvaluation(t *testing.T, method identity.Method, targets ...identity.Target) identity.Evaluation {
	t.Helper()
	ev, err := identity.NewEvaluation(method, targets...)
	require.NoError(t, err)
	return ev
}

// noisePlan sweeps gaussian noise at 10% and 20% plus the perfect baseline.
func noisePlan(t *testing.T) *plan.Plan {
	return &plan.Plan{
		Experiment:     identity.Normal,
		Seeds:          []int64{42},
		Datasets:       []string{"toy"},
		Generators:     []identity.Generator{identity.Bootstrap},
		ErrorKinds:     []corrupt.Kind{corrupt.GaussianNoise},
		ErrorRates:     []float64{0.1, 0.2},
		Perfectness:    []identity.Perfectness{identity.Perfect, identity.Imperfect},
		ColumnFraction: 1.0,
		Evaluations: []identity.Evaluation{
			mustEvaluation(t, identity.QLT, identity.Real, identity.Synthetic),
			mustEvaluation(t, identity.QLT, identity.RealHurt, identity.SyntheticHurt),
		},
	}
}

func experiment(kind *corrupt.Kind, rate float64, level identity.Perfectness) identity.Experiment {
	e := identity.Experiment{
		Kind:        identity.Normal,
		Dataset:     "toy",
		Seed:        42,
		Perfectness: level,
		Generator:   identity.Bootstrap,
	}
	if kind != nil {
		e = e.WithError(*kind, rate)
	}
	return e
}

// countingGenerator wraps Bootstrap and counts calls.
type countingGenerator struct {
	calls atomic.Int64
}

func (g *countingGenerator) Generate(ctx context.Context, rc *repro.Context, in sweep.Input) (*table.Table, error) {
	g.calls.Add(1)
	return sweep.Bootstrap{}.Generate(ctx, rc, in)
}
