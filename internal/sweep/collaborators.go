package sweep

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/synq/internal/canon"
	"github.com/roach88/synq/internal/dataset"
	"github.com/roach88/synq/internal/identity"
	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// DatasetSource loads real datasets by name. *dataset.Provider implements it.
type DatasetSource interface {
	Load(ctx context.Context, name string) (*dataset.Dataset, error)
}

// Input is what a generator trains on: a possibly corrupted table and the
// rows and columns the corruption touched (empty for clean data).
type Input struct {
	Table    *table.Table
	Rows     []int64
	Columns  []string
	Metadata dataset.Metadata
}

// Generator produces a synthetic table. Randomness must come from rc.
type Generator interface {
	Generate(ctx context.Context, rc *repro.Context, in Input) (*table.Table, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, rc *repro.Context, in Input) (*table.Table, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, rc *repro.Context, in Input) (*table.Table, error) {
	return f(ctx, rc, in)
}

// EvaluationInput carries the tables of an evaluation's targets, in target
// order.
type EvaluationInput struct {
	Method   identity.Method
	Targets  []identity.Target
	Tables   []*table.Table
	Metadata dataset.Metadata
}

// Evaluator scores one evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context, in EvaluationInput) (canon.Object, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, in EvaluationInput) (canon.Object, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, in EvaluationInput) (canon.Object, error) {
	return f(ctx, in)
}

// Bootstrap is the reference generator: it resamples the input rows with
// replacement and reindexes the result.
type Bootstrap struct{}

// Generate implements Generator.
func (Bootstrap) Generate(_ context.Context, rc *repro.Context, in Input) (*table.Table, error) {
	n := in.Table.Len()
	if n == 0 {
		return in.Table.Clone(), nil
	}
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	drawn, err := repro.SampleFrom(rc, positions, float64(n), repro.WithReplacement())
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return in.Table.Reorder(drawn), nil
}

// Profile is the reference evaluator. It reports row and null counts per
// target and, for two targets, the mean absolute gap between the means of
// their shared numeric columns.
type Profile struct{}

// Evaluate implements Evaluator.
func (Profile) Evaluate(_ context.Context, in EvaluationInput) (canon.Object, error) {
	if len(in.Tables) != len(in.Targets) {
		return nil, fmt.Errorf("profile: %d tables for %d targets", len(in.Tables), len(in.Targets))
	}
	targets := make([]string, len(in.Targets))
	rows := make([]int64, len(in.Tables))
	nulls := make([]int64, len(in.Tables))
	for i, t := range in.Tables {
		targets[i] = string(in.Targets[i])
		rows[i] = int64(t.Len())
		for _, c := range t.Columns() {
			nulls[i] += int64(c.NullCount())
		}
	}

	out := canon.Object{
		"method":  canon.String(in.Method),
		"targets": canon.Strings(targets),
		"rows":    canon.Ints(rows),
		"nulls":   canon.Ints(nulls),
	}
	if len(in.Tables) == 2 {
		if gap, ok := meanGap(in.Tables[0], in.Tables[1]); ok {
			out["mean_gap"] = canon.String(strconv.FormatFloat(gap, 'g', -1, 64))
		}
	}
	return out, nil
}

// meanGap averages |mean(a.c) - mean(b.c)| over numeric columns c present
// in both tables with at least one value each.
func meanGap(a, b *table.Table) (float64, bool) {
	var gaps []float64
	for _, name := range a.NumericColumns() {
		cb, ok := b.Column(name)
		if !ok || cb.Kind() != table.Numeric {
			continue
		}
		ca, _ := a.Column(name)
		va, vb := ca.Floats(), cb.Floats()
		if len(va) == 0 || len(vb) == 0 {
			continue
		}
		gaps = append(gaps, math.Abs(stat.Mean(va, nil)-stat.Mean(vb, nil)))
	}
	if len(gaps) == 0 {
		return 0, false
	}
	return stat.Mean(gaps, nil), true
}
