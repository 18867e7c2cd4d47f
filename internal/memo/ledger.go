package memo

import (
	"context"
	"errors"
	"fmt"
)

// Status is the outcome of a computation that ran.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Scope says which identity family a ledger entry belongs to.
type Scope string

const (
	ScopeExperiment Scope = "experiment"
	ScopeEvaluation Scope = "evaluation"
)

// Completion is a ledger record for a computation that ran.
type Completion struct {
	ID     string
	Digest string
	Scope  Scope
	Status Status
	// Result is canonical JSON, "{}" when the computation produced nothing.
	Result []byte
	// Error is the failure message for StatusFailed.
	Error string
	Seq   int64
	RunID string
}

// SkipRecord is a ledger record for a computation that did not run.
type SkipRecord struct {
	ID     string
	Digest string
	Scope  Scope
	State  State
	Reason string
	Seq    int64
	RunID  string
}

// Ledger is the persistent existence store consulted by a Gate.
//
// Exists reports whether a successful completion is recorded for id.
// Failed completions and skips do not count, so they are retried by a later
// sweep.
type Ledger interface {
	Exists(ctx context.Context, id string) (bool, error)
	WriteCompletion(ctx context.Context, c Completion) error
	WriteSkip(ctx context.Context, s SkipRecord) error
}

// LedgerError wraps a failed ledger operation. Ledger failures are fatal to
// a sweep: continuing would leave the ledger incomplete.
type LedgerError struct {
	Op  string
	ID  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s %q: %v", e.Op, e.ID, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// IsLedgerError returns true if err is, or wraps, a LedgerError.
func IsLedgerError(err error) bool {
	var le *LedgerError
	return errors.As(err, &le)
}

// Entry is one ledger record as listed for inspection. Completions carry
// State Completed and a Status; skips carry their skip State.
type Entry struct {
	Seq    int64
	ID     string
	Scope  Scope
	State  State
	Status Status
	// Detail is the skip reason or the failure message.
	Detail string
	RunID  string
}

// ListOptions narrows a ledger listing. Zero values match everything.
type ListOptions struct {
	Scope Scope
	RunID string
	Limit int
}

// Journal is a Ledger that can be listed and resumed.
type Journal interface {
	Ledger
	// List returns entries ordered by seq, then id.
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
	// LastSeq returns the highest seq on record, 0 for an empty ledger.
	LastSeq(ctx context.Context) (int64, error)
	Close() error
}
