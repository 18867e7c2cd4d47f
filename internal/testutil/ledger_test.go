package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synq/internal/memo"
)

func TestMemoryLedger_ExistsOnlyCountsSuccess(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger("done")

	ok, err := l.Exists(ctx, "done")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.WriteCompletion(ctx, memo.Completion{ID: "broken", Status: memo.StatusFailed}))
	ok, err = l.Exists(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.WriteSkip(ctx, memo.SkipRecord{ID: "skipped", Reason: "r"}))
	ok, err = l.Exists(ctx, "skipped")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"done", "broken", "skipped"}, l.ExistsCalls())
	assert.Len(t, l.Completions(), 2)
	assert.Len(t, l.Skips(), 1)
}

func TestMemoryLedger_Err(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	l := NewMemoryLedger()
	l.Err = boom

	_, err := l.Exists(ctx, "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, l.WriteCompletion(ctx, memo.Completion{ID: "x"}), boom)
	assert.ErrorIs(t, l.WriteSkip(ctx, memo.SkipRecord{ID: "x"}), boom)
}

func TestFixedRunGenerator(t *testing.T) {
	assert.Equal(t, "run-1", NewFixedRunGenerator("run-1").Generate())
	assert.Equal(t, "test-run-default", NewFixedRunGenerator("").Generate())
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	logger.Debug("visible with -v", "key", "value")
}
