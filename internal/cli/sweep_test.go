package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synq/internal/sweep"
)

const noisePlan = `
seeds:           [42]
datasets:        ["toy"]
generators:      ["bootstrap"]
error_kinds:     ["gaussian_noise"]
error_rates:     [0.1, 0.2]
perfectness:     ["perfect", "imperfect"]
column_fraction: 1.0
evaluations: [
	{method: "QLT", targets: ["R", "S"]},
	{method: "QLT", targets: ["RH", "SH"]},
]
`

type sweepEnv struct {
	datasets  string
	ledger    string
	artifacts string
	plan      string
}

func newSweepEnv(t *testing.T, planSrc string) sweepEnv {
	t.Helper()
	work := t.TempDir()
	env := sweepEnv{
		datasets:  writeToyDataset(t),
		ledger:    filepath.Join(work, "ledger.db"),
		artifacts: filepath.Join(work, "artifacts"),
		plan:      filepath.Join(work, "plan.cue"),
	}
	require.NoError(t, os.WriteFile(env.plan, []byte(planSrc), 0o644))
	return env
}

func (e sweepEnv) args(cmd ...string) []string {
	return append(cmd,
		"--datasets-dir", e.datasets,
		"--ledger-dsn", e.ledger,
		"--artifacts-dir", e.artifacts,
		"--format", "json")
}

func TestSweep_RunAndResume(t *testing.T) {
	env := newSweepEnv(t, noisePlan)

	stdout, _, err := execute(t, env.args("sweep", env.plan)...)
	require.NoError(t, err)
	var first SweepReport
	decodeData(t, stdout, &first)
	assert.Equal(t, env.plan, first.Plan)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, 3, first.Configs)
	assert.Equal(t, sweep.Counts{Completed: 3}, first.Experiments)
	assert.Equal(t, sweep.Counts{Completed: 4, SkippedRedundant: 1}, first.Evaluations)

	synthetic := filepath.Join(env.artifacts, "synthetic", "data", "NOR", "toy", "42", "IMP", "gaussian_noise", "10", "bootstrap.csv")
	assert.FileExists(t, synthetic)

	stdout, _, err = execute(t, env.args("sweep", env.plan)...)
	require.NoError(t, err)
	var second SweepReport
	decodeData(t, stdout, &second)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, sweep.Counts{SkippedExisting: 3}, second.Experiments)
	assert.Equal(t, sweep.Counts{SkippedExisting: 4, SkippedRedundant: 1}, second.Evaluations)

	stdout, _, err = execute(t, env.args("ledger", "ls", "--run", first.RunID)...)
	require.NoError(t, err)
	var listing LedgerListing
	decodeData(t, stdout, &listing)
	require.Len(t, listing.Entries, 8)
	for i := 1; i < len(listing.Entries); i++ {
		assert.Less(t, listing.Entries[i-1].Seq, listing.Entries[i].Seq)
	}
	assert.Equal(t, "experiment", listing.Entries[0].Scope)
	assert.Equal(t, "completed", listing.Entries[0].State)
	assert.Equal(t, "succeeded", listing.Entries[0].Status)

	stdout, _, err = execute(t, env.args("ledger", "ls", "--scope", "experiment")...)
	require.NoError(t, err)
	listing = LedgerListing{}
	decodeData(t, stdout, &listing)
	assert.Len(t, listing.Entries, 6)
}

func TestSweep_TextOutput(t *testing.T) {
	env := newSweepEnv(t, noisePlan)
	args := env.args("sweep", env.plan)
	args = args[:len(args)-2] // text format

	stdout, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 configuration(s) from "+env.plan)
	assert.Contains(t, stdout, "Experiments: 3 completed, 0 failed")
	assert.Contains(t, stdout, "Evaluations: 4 completed, 0 failed, 0 existing, 1 redundant")

	args = env.args("ledger", "ls", "--limit", "2")
	stdout, _, err = execute(t, args[:len(args)-2]...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(2 entries)")
	assert.Contains(t, stdout, "NOR#toy#42#PERF#NULL#NULL#bootstrap")
}

func TestSweep_MissingDatasetFails(t *testing.T) {
	env := newSweepEnv(t, `
seeds:       [1]
datasets:    ["missing"]
generators:  ["bootstrap"]
perfectness: ["perfect"]
`)
	stdout, _, err := execute(t, env.args("sweep", env.plan)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var report SweepReport
	decodeData(t, stdout, &report)
	assert.Equal(t, 1, report.Errors)
}

func TestSweep_InvalidPlan(t *testing.T) {
	env := newSweepEnv(t, `seeds: ["not a number"]`)
	stdout, _, err := execute(t, env.args("sweep", env.plan)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodePlan, decodeError(t, stdout).Code)
}

func TestLedgerList_InvalidScope(t *testing.T) {
	env := newSweepEnv(t, noisePlan)
	stdout, _, err := execute(t, env.args("ledger", "ls", "--scope", "everything")...)
	require.Error(t, err)
	assert.Equal(t, ErrCodeLedger, decodeError(t, stdout).Code)
}

func TestLedgerList_Empty(t *testing.T) {
	env := newSweepEnv(t, noisePlan)
	args := env.args("ledger", "ls")
	stdout, _, err := execute(t, args[:len(args)-2]...)
	require.NoError(t, err)
	assert.Equal(t, "(0 entries)\n", stdout)
}
