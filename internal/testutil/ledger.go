package testutil

import (
	"context"
	"sync"

	"github.com/roach88/synq/internal/memo"
)

// MemoryLedger is an in-memory memo.Ledger that records every call.
//
// Set Err to make every subsequent call fail.
type MemoryLedger struct {
	mu          sync.Mutex
	completions []memo.Completion
	skips       []memo.SkipRecord
	existsCalls []string

	Err error
}

var _ memo.Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger returns a ledger preloaded with successful completions
// for ids.
func NewMemoryLedger(ids ...string) *MemoryLedger {
	l := &MemoryLedger{}
	for _, id := range ids {
		l.completions = append(l.completions, memo.Completion{ID: id, Status: memo.StatusSucceeded})
	}
	return l
}

// Exists reports whether a successful completion is recorded for id.
func (l *MemoryLedger) Exists(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	l.existsCalls = append(l.existsCalls, id)
	for _, c := range l.completions {
		if c.ID == id && c.Status == memo.StatusSucceeded {
			return true, nil
		}
	}
	return false, nil
}

// WriteCompletion records c.
func (l *MemoryLedger) WriteCompletion(_ context.Context, c memo.Completion) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.completions = append(l.completions, c)
	return nil
}

// WriteSkip records s.
func (l *MemoryLedger) WriteSkip(_ context.Context, s memo.SkipRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.skips = append(l.skips, s)
	return nil
}

// Completions returns a copy of every recorded completion, preloaded ones
// included.
func (l *MemoryLedger) Completions() []memo.Completion {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]memo.Completion(nil), l.completions...)
}

// Skips returns a copy of every recorded skip.
func (l *MemoryLedger) Skips() []memo.SkipRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]memo.SkipRecord(nil), l.skips...)
}

// ExistsCalls returns the ids passed to Exists, in order.
func (l *MemoryLedger) ExistsCalls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.existsCalls...)
}
