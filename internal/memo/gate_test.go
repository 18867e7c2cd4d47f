package memo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synq/internal/canon"
	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/identity"
	"github.com/roach88/synq/internal/memo"
	"github.com/roach88/synq/internal/testutil"
)

func experiment(rate float64) identity.Experiment {
	e := identity.Experiment{
		Kind:        identity.Normal,
		Dataset:     "adult",
		Seed:        42,
		Perfectness: identity.Imperfect,
		Generator:   identity.CTGAN,
	}
	return e.WithError(corrupt.GaussianNoise, rate)
}

func computation(t *testing.T, exp identity.Experiment, targets ...identity.Target) identity.Computation {
	t.Helper()
	ev, err := identity.NewEvaluation(identity.QLT, targets...)
	require.NoError(t, err)
	return identity.Computation{Evaluation: ev, Experiment: exp}
}

func counting(calls *int, result canon.Object, err error) memo.Func {
	return func(context.Context) (canon.Object, error) {
		*calls++
		return result, err
	}
}

func TestGate_RunsAndRecordsCompletion(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewMemoryLedger()
	gate := memo.NewGate(ledger, memo.WithRunID("run-1"), memo.WithLogger(testutil.NewTestLogger(t)))
	exp := experiment(0.2)

	calls := 0
	out, err := gate.Run(ctx, exp, counting(&calls, canon.Object{"rows": canon.Int(12)}, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, memo.Completed, out.State)
	assert.Equal(t, memo.StatusSucceeded, out.Status)
	assert.True(t, out.Ran())
	assert.False(t, out.Failed())
	assert.Equal(t, int64(1), out.Seq)

	comps := ledger.Completions()
	require.Len(t, comps, 1)
	assert.Equal(t, "NOR#adult#42#IMP#gaussian_noise#20#ctgan", comps[0].ID)
	assert.Equal(t, memo.ScopeExperiment, comps[0].Scope)
	assert.Equal(t, `{"rows":12}`, string(comps[0].Result))
	assert.Equal(t, "run-1", comps[0].RunID)
	assert.Empty(t, ledger.Skips())
}

func TestGate_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	exp := experiment(0.2)
	ledger := testutil.NewMemoryLedger(exp.String())
	gate := memo.NewGate(ledger)

	calls := 0
	out, err := gate.Run(ctx, exp, counting(&calls, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, 0, calls, "existing identities never run")
	assert.Equal(t, memo.SkippedExisting, out.State)
	assert.Equal(t, memo.ReasonExists, out.Reason)

	skips := ledger.Skips()
	require.Len(t, skips, 1)
	assert.Equal(t, exp.String(), skips[0].ID)
	assert.Equal(t, "already exists", skips[0].Reason)
	assert.Equal(t, memo.SkippedExisting, skips[0].State)
}

func TestGate_BaselineOnlyAtFirstRate(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewMemoryLedger()
	gate := memo.NewGate(ledger, memo.WithSweepRates([]int{10, 20, 40}))

	states := map[float64]memo.State{}
	calls := 0
	for _, rate := range []float64{0.1, 0.2, 0.4} {
		c := computation(t, experiment(rate), identity.Real, identity.Synthetic)
		out, err := gate.Run(ctx, c, counting(&calls, nil, nil))
		require.NoError(t, err)
		states[rate] = out.State
		if out.State == memo.SkippedRedundant {
			assert.Equal(t, "baseline is only computed for error rate 10", out.Reason)
		}
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, memo.Completed, states[0.1])
	assert.Equal(t, memo.SkippedRedundant, states[0.2])
	assert.Equal(t, memo.SkippedRedundant, states[0.4])
	assert.Len(t, ledger.Skips(), 2)
	require.Len(t, ledger.Completions(), 1)
	assert.Equal(t, memo.ScopeEvaluation, ledger.Completions()[0].Scope)
}

func TestGate_HurtTargetsRunAtEveryRate(t *testing.T) {
	ctx := context.Background()
	gate := memo.NewGate(testutil.NewMemoryLedger(), memo.WithSweepRates([]int{10, 20, 40}))

	calls := 0
	for _, rate := range []float64{0.1, 0.2, 0.4} {
		c := computation(t, experiment(rate), identity.Real, identity.SyntheticHurt)
		out, err := gate.Run(ctx, c, counting(&calls, nil, nil))
		require.NoError(t, err)
		assert.Equal(t, memo.Completed, out.State)
	}
	assert.Equal(t, 3, calls)
}

func TestGate_FailureIsRecordedNotReturned(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewMemoryLedger()
	gate := memo.NewGate(ledger)
	boom := errors.New("generator diverged")
	exp := experiment(0.2)

	calls := 0
	out, err := gate.Run(ctx, exp, counting(&calls, nil, boom))
	require.NoError(t, err)
	assert.True(t, out.Failed())
	assert.ErrorIs(t, out.Err, boom)

	comps := ledger.Completions()
	require.Len(t, comps, 1)
	assert.Equal(t, memo.StatusFailed, comps[0].Status)
	assert.Equal(t, "generator diverged", comps[0].Error)

	// failed completions are retried
	out, err = gate.Run(ctx, exp, counting(&calls, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, memo.StatusSucceeded, out.Status)
	assert.Equal(t, 2, calls)
}

func TestGate_InapplicableSkip(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewMemoryLedger()
	gate := memo.NewGate(ledger)

	out, err := gate.Run(ctx, experiment(0.2), func(context.Context) (canon.Object, error) {
		return nil, memo.Skip("no columns to corrupt")
	})
	require.NoError(t, err)
	assert.Equal(t, memo.SkippedInapplicable, out.State)
	assert.Equal(t, "no columns to corrupt", out.Reason)
	assert.Empty(t, ledger.Completions())
	require.Len(t, ledger.Skips(), 1)
	assert.Equal(t, memo.SkippedInapplicable, ledger.Skips()[0].State)
}

func TestGate_LedgerErrorsAreFatal(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewMemoryLedger()
	ledger.Err = errors.New("connection refused")
	gate := memo.NewGate(ledger)

	calls := 0
	_, err := gate.Run(ctx, experiment(0.2), counting(&calls, nil, nil))
	require.Error(t, err)
	assert.True(t, memo.IsLedgerError(err))
	assert.ErrorIs(t, err, ledger.Err)
	assert.Equal(t, 0, calls)
}

func TestGate_InvalidSubject(t *testing.T) {
	gate := memo.NewGate(testutil.NewMemoryLedger())
	bad := identity.Experiment{Dataset: "a#b"}

	_, err := gate.Run(context.Background(), bad, counting(new(int), nil, nil))
	require.Error(t, err)
	assert.False(t, memo.IsLedgerError(err))
}

func TestGate_SharedClock(t *testing.T) {
	ctx := context.Background()
	clock := memo.NewClockAt(100)
	ledger := testutil.NewMemoryLedger()
	a := memo.NewGate(ledger, memo.WithClock(clock))
	b := memo.NewGate(ledger, memo.WithClock(clock))

	outA, err := a.Run(ctx, experiment(0.1), counting(new(int), nil, nil))
	require.NoError(t, err)
	outB, err := b.Run(ctx, experiment(0.2), counting(new(int), nil, nil))
	require.NoError(t, err)

	assert.Equal(t, int64(101), outA.Seq)
	assert.Equal(t, int64(102), outB.Seq)
	assert.Same(t, clock, a.Clock())
}
