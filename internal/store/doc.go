// Package store provides the SQLite-backed computation ledger.
//
// The ledger is append-only and keeps two tables:
//   - completions: computations that ran, succeeded or failed
//   - skips: computations the gate declined to run, with a reason
//
// # Invariants
//
// At most one successful completion per identity:
//   - partial UNIQUE index on completions(id) WHERE status = 'succeeded'
//   - a second success for the same identity is silently ignored
//
// Failed completions and skips never count as existing, so a later sweep
// retries them.
//
// Logical ordering:
//   - every record carries the gate's seq (logical clock), never a timestamp
//   - listings are ordered by seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
