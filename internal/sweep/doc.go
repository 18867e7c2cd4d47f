// Package sweep runs a plan's experiment configurations one at a time.
//
// For each configuration the sweep seeds the shared RandomContext, loads
// the dataset, and gates the experiment behind its identity: corrupt the
// real table, generate synthetic data, upload it, record the completion.
// The plan's evaluations are then gated per experiment, with the baseline
// rule applied by the gate.
//
// Errors local to one configuration are logged and counted and the sweep
// moves on. Ledger errors abort the sweep, since a ledger with holes cannot
// be trusted on the next run.
//
// A Sweep is not safe for concurrent use: configurations share one
// RandomContext and the gate's check-then-act is not atomic.
package sweep
