package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/synq/internal/dataset"
	"github.com/roach88/synq/internal/memo"
	"github.com/roach88/synq/internal/plan"
	"github.com/roach88/synq/internal/sweep"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions

	// RunTokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunTokens sweep.RunTokenGenerator
}

// SweepReport wraps a sweep summary for output.
type SweepReport struct {
	Plan string `json:"plan"`
	sweep.Summary
}

// RenderText implements TextRenderer.
func (r SweepReport) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Sweep %s: %d configuration(s) from %s\n", r.RunID, r.Configs, r.Plan)
	renderCounts(w, "Experiments", r.Experiments)
	renderCounts(w, "Evaluations", r.Evaluations)
	if r.Errors > 0 {
		fmt.Fprintf(w, "%d configuration(s) abandoned, see log\n", r.Errors)
	}
	return nil
}

func renderCounts(w io.Writer, label string, c sweep.Counts) {
	fmt.Fprintf(w, "  %s: %d completed, %d failed, %d existing, %d redundant, %d inapplicable\n",
		label, c.Completed, c.Failed, c.SkippedExisting, c.SkippedRedundant, c.SkippedInapplicable)
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep <plan.cue>",
		Short: "Run every configuration of a sweep plan",
		Long: `Run a CUE sweep plan against the configured ledger.

Configurations already completed in the ledger are skipped, so an
interrupted sweep can be restarted with the same command. Baseline
evaluations are computed at the plan's first error rate only.

Example:
  synq sweep plans/noise.cue
  synq sweep plans/noise.cue --ledger-dsn ./ledger.db --artifacts-dir ./out -v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, args[0], cmd)
		},
	}

	return cmd
}

func runSweep(opts *SweepOptions, planPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	cfg := opts.Config

	p, err := plan.Load(planPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodePlan, "invalid plan", err)
	}
	formatter.VerboseLog("Loaded plan %s: %d configuration(s)", planPath, len(p.Expand()))

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after current configuration", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	ledger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			logger.Error("error closing ledger", "error", closeErr)
		}
	}()

	artifacts, err := openArtifacts(cfg, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeArtifact, "failed to open artifact store", err)
	}

	provider, err := dataset.Open(ctx, cfg.DatasetsDir, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDataset, "failed to open datasets", err)
	}
	defer provider.Close()

	sweepOpts := []sweep.Option{sweep.WithLogger(logger)}
	if opts.RunTokens != nil {
		sweepOpts = append(sweepOpts, sweep.WithRunTokens(opts.RunTokens))
	}
	sum, err := sweep.New(p, ledger, provider, artifacts, sweepOpts...).Run(ctx)
	report := SweepReport{Plan: planPath, Summary: sum}
	if err != nil {
		code := ErrCodeGeneric
		if memo.IsLedgerError(err) {
			code = ErrCodeLedger
		}
		_ = formatter.Error(code, "sweep aborted", report)
		return WrapExitError(ExitFailure, "sweep aborted", err)
	}

	if err := formatter.Success(report); err != nil {
		return err
	}
	if sum.Errors > 0 || sum.Experiments.Failed > 0 || sum.Evaluations.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("sweep %s finished with failures", sum.RunID))
	}
	return nil
}
