// Package testutil provides deterministic collaborators for tests: a
// logger that writes to t.Log, a fixed run token generator and an in-memory
// ledger that records every call.
package testutil
