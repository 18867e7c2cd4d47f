package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/synq/internal/memo"
)

// createTestStore creates a new ledger in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCompletion creates a completion with minimal required fields.
func createTestCompletion(id string, status memo.Status, seq int64) memo.Completion {
	return memo.Completion{
		ID:     id,
		Digest: "digest-" + id,
		Scope:  memo.ScopeExperiment,
		Status: status,
		Result: []byte(`{}`),
		Seq:    seq,
		RunID:  "run-1",
	}
}

// createTestSkip creates a skip record with minimal required fields.
func createTestSkip(id string, state memo.State, reason string, seq int64) memo.SkipRecord {
	return memo.SkipRecord{
		ID:     id,
		Digest: "digest-" + id,
		Scope:  memo.ScopeEvaluation,
		State:  state,
		Reason: reason,
		Seq:    seq,
		RunID:  "run-1",
	}
}
