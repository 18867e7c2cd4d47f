package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/synq/internal/memo"
)

// LedgerListOptions holds flags for ledger ls.
type LedgerListOptions struct {
	*RootOptions
	Scope string
	RunID string
	Limit int
}

// LedgerEntry is one listed ledger record.
type LedgerEntry struct {
	Seq    int64  `json:"seq"`
	ID     string `json:"id"`
	Scope  string `json:"scope"`
	State  string `json:"state"`
	Status string `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
	RunID  string `json:"run_id,omitempty"`
}

// LedgerListing is the output of ledger ls.
type LedgerListing struct {
	Entries []LedgerEntry `json:"entries"`
}

// RenderText implements TextRenderer.
func (l LedgerListing) RenderText(w io.Writer) error {
	if len(l.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "(0 entries)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"seq", "state", "status", "id", "detail", "run"})
	for _, e := range l.Entries {
		t.AppendRow(table.Row{e.Seq, e.State, e.Status, e.ID, e.Detail, e.RunID})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d entries)\n", len(l.Entries))
	return nil
}

// NewLedgerCommand creates the ledger command group.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the computation ledger",
	}
	cmd.AddCommand(newLedgerListCommand(rootOpts))
	return cmd
}

func newLedgerListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List completions and skips in sequence order",
		Long: `List ledger records in sequence order.

Examples:
  synq ledger ls
  synq ledger ls --scope evaluation --run 0190a6e2-...
  synq ledger ls --limit 20 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scope, "scope", "", "experiment|evaluation")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only records of this sweep run")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records (0 = all)")

	return cmd
}

func runLedgerList(opts *LedgerListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	listOpts := memo.ListOptions{RunID: opts.RunID, Limit: opts.Limit}
	switch memo.Scope(opts.Scope) {
	case "":
	case memo.ScopeExperiment, memo.ScopeEvaluation:
		listOpts.Scope = memo.Scope(opts.Scope)
	default:
		return formatter.Fail(ExitCommandError, ErrCodeLedger, fmt.Sprintf("invalid scope %q", opts.Scope), nil)
	}
	if opts.Limit < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "limit must not be negative", nil)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ledger, err := openLedger(ctx, opts.Config, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	defer ledger.Close()

	entries, err := ledger.List(ctx, listOpts)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeLedger, "failed to list ledger", err)
	}

	listing := LedgerListing{Entries: make([]LedgerEntry, len(entries))}
	for i, e := range entries {
		listing.Entries[i] = LedgerEntry{
			Seq:    e.Seq,
			ID:     e.ID,
			Scope:  string(e.Scope),
			State:  e.State.String(),
			Status: string(e.Status),
			Detail: e.Detail,
			RunID:  e.RunID,
		}
	}
	return formatter.Success(listing)
}
