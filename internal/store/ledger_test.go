package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/roach88/synq/internal/memo"
)

func TestExists_OnlySuccessfulCompletions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteCompletion(ctx, createTestCompletion("failed", memo.StatusFailed, 1)); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}
	if err := s.WriteSkip(ctx, createTestSkip("skipped", memo.SkippedRedundant, "baseline", 2)); err != nil {
		t.Fatalf("WriteSkip() failed: %v", err)
	}
	if err := s.WriteCompletion(ctx, createTestCompletion("ok", memo.StatusSucceeded, 3)); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}

	tests := map[string]bool{"failed": false, "skipped": false, "ok": true, "missing": false}
	for id, want := range tests {
		got, err := s.Exists(ctx, id)
		if err != nil {
			t.Fatalf("Exists(%q) failed: %v", id, err)
		}
		if got != want {
			t.Errorf("Exists(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestWriteCompletion_SecondSuccessIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestCompletion("exp", memo.StatusSucceeded, 1)
	first.Result = []byte(`{"score":"first"}`)
	second := createTestCompletion("exp", memo.StatusSucceeded, 2)
	second.Result = []byte(`{"score":"second"}`)

	if err := s.WriteCompletion(ctx, first); err != nil {
		t.Fatalf("first WriteCompletion() failed: %v", err)
	}
	if err := s.WriteCompletion(ctx, second); err != nil {
		t.Fatalf("second WriteCompletion() should be ignored, got: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM completions WHERE id = 'exp'").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 completion, got %d", count)
	}

	result, err := s.ReadResult(ctx, "exp")
	if err != nil {
		t.Fatalf("ReadResult() failed: %v", err)
	}
	if string(result) != `{"score":"first"}` {
		t.Errorf("result = %s, want first write", result)
	}
}

func TestWriteCompletion_FailuresAppend(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for seq := int64(1); seq <= 2; seq++ {
		c := createTestCompletion("exp", memo.StatusFailed, seq)
		c.Error = "generator diverged"
		if err := s.WriteCompletion(ctx, c); err != nil {
			t.Fatalf("WriteCompletion() failed: %v", err)
		}
	}
	if err := s.WriteCompletion(ctx, createTestCompletion("exp", memo.StatusSucceeded, 3)); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM completions WHERE id = 'exp'").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 completions, got %d", count)
	}
}

func TestWriteCompletion_EmptyResultDefaults(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := createTestCompletion("exp", memo.StatusSucceeded, 1)
	c.Result = nil
	if err := s.WriteCompletion(ctx, c); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}
	result, err := s.ReadResult(ctx, "exp")
	if err != nil {
		t.Fatalf("ReadResult() failed: %v", err)
	}
	if string(result) != "{}" {
		t.Errorf("result = %q, want {}", result)
	}
}

func TestReadResult_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadResult(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestList_MergedInSeqOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	failed := createTestCompletion("c", memo.StatusFailed, 3)
	failed.Error = "boom"
	writes := []func() error{
		func() error { return s.WriteCompletion(ctx, failed) },
		func() error { return s.WriteSkip(ctx, createTestSkip("b", memo.SkippedExisting, memo.ReasonExists, 2)) },
		func() error { return s.WriteCompletion(ctx, createTestCompletion("a", memo.StatusSucceeded, 1)) },
	}
	for _, w := range writes {
		if err := w(); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	entries, err := s.List(ctx, memo.ListOptions{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []struct {
		id     string
		state  memo.State
		status memo.Status
		detail string
	}{
		{"a", memo.Completed, memo.StatusSucceeded, ""},
		{"b", memo.SkippedExisting, "", "already exists"},
		{"c", memo.Completed, memo.StatusFailed, "boom"},
	}
	for i, w := range want {
		e := entries[i]
		if e.Seq != int64(i+1) || e.ID != w.id || e.State != w.state || e.Status != w.status || e.Detail != w.detail {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}
}

func TestList_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	other := createTestCompletion("x", memo.StatusSucceeded, 1)
	other.RunID = "run-2"
	if err := s.WriteCompletion(ctx, other); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}
	if err := s.WriteCompletion(ctx, createTestCompletion("y", memo.StatusSucceeded, 2)); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}
	if err := s.WriteSkip(ctx, createTestSkip("z", memo.SkippedRedundant, "baseline", 3)); err != nil {
		t.Fatalf("WriteSkip() failed: %v", err)
	}

	byRun, err := s.List(ctx, memo.ListOptions{RunID: "run-1"})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(byRun) != 2 {
		t.Errorf("run filter: expected 2 entries, got %d", len(byRun))
	}

	byScope, err := s.List(ctx, memo.ListOptions{Scope: memo.ScopeEvaluation})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(byScope) != 1 || byScope[0].ID != "z" {
		t.Errorf("scope filter: got %+v", byScope)
	}

	limited, err := s.List(ctx, memo.ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "x" {
		t.Errorf("limit: got %+v", limited)
	}
}

func TestList_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	entries, err := s.List(context.Background(), memo.ListOptions{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if entries == nil {
		t.Error("List() returned nil, want empty slice")
	}
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("empty ledger LastSeq = %d, want 0", seq)
	}

	if err := s.WriteCompletion(ctx, createTestCompletion("a", memo.StatusSucceeded, 4)); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}
	if err := s.WriteSkip(ctx, createTestSkip("b", memo.SkippedExisting, memo.ReasonExists, 9)); err != nil {
		t.Fatalf("WriteSkip() failed: %v", err)
	}

	seq, err = s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 9 {
		t.Errorf("LastSeq = %d, want 9", seq)
	}
}

func TestLedger_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.WriteCompletion(ctx, createTestCompletion("exp", memo.StatusSucceeded, 1)); err != nil {
		t.Fatalf("WriteCompletion() failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	ok, err := s.Exists(ctx, "exp")
	if err != nil {
		t.Fatalf("Exists() failed: %v", err)
	}
	if !ok {
		t.Error("completion lost across reopen")
	}
}
