// Package memo guards experiment and evaluation computations against
// recomputation.
//
// A Gate consults a persistent Ledger before running a computation. Every
// gated computation walks a small state machine:
//
//	Pending -> SkippedExisting       (a successful completion is on record)
//	Pending -> SkippedRedundant      (baseline at a non-representative rate)
//	Pending -> Running -> Completed  (succeeded or failed, both recorded)
//	Running -> SkippedInapplicable   (the computation asked to be skipped)
//
// Each gated computation is stamped with a sequence number from a logical
// Clock so ledger order is independent of wall time.
//
// The existence check and the completion write are two separate ledger
// calls. Two processes sharing a ledger can both observe "missing" and both
// run. Sweeps are expected to run one process per ledger.
package memo
