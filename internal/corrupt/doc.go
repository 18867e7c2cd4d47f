// Package corrupt injects controlled, reproducible data errors into tables.
//
// A Corruptor pairs a Kind with a Spec. Corrupt deep-copies the input,
// samples rows and eligible columns through a repro.Context, applies the
// kind's strategy and reports exactly which rows and columns were touched.
// The input table is never modified.
//
// Column eligibility follows the strategy's Applicability. An empty eligible
// pool is not an error: the Result carries the unchanged copy and no
// columns, and the caller decides whether that configuration is worth
// running.
package corrupt
