package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/dataset"
	"github.com/roach88/synq/internal/repro"
)

// CorruptOptions holds flags for the corrupt command.
type CorruptOptions struct {
	*RootOptions
	Kind           string
	Seed           int64
	RowFraction    float64
	ColumnFraction float64
	Output         string
}

// CorruptReport describes one corruption.
type CorruptReport struct {
	Dataset     string   `json:"dataset"`
	Kind        string   `json:"kind"`
	Seed        int64    `json:"seed"`
	Rows        []int64  `json:"rows"`
	Columns     []string `json:"columns"`
	TotalRows   int      `json:"total_rows"`
	Fingerprint string   `json:"fingerprint"`
	Output      string   `json:"output,omitempty"`
}

// RenderText implements TextRenderer.
func (r CorruptReport) RenderText(w io.Writer) error {
	if len(r.Columns) == 0 {
		fmt.Fprintf(w, "No eligible columns for %s in %s; table unchanged\n", r.Kind, r.Dataset)
	} else {
		fmt.Fprintf(w, "Corrupted %d of %d row(s) in column(s) %s with %s (seed %d)\n",
			len(r.Rows), r.TotalRows, strings.Join(r.Columns, ", "), r.Kind, r.Seed)
	}
	if r.Output != "" {
		fmt.Fprintf(w, "Wrote %s\n", r.Output)
	}
	return nil
}

// NewCorruptCommand creates the corrupt command.
func NewCorruptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CorruptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "corrupt <dataset>",
		Short: "Corrupt a real dataset",
		Long: `Apply one corruption kind to a dataset from the datasets directory.

The same seed, fractions and input always produce the same output.
Without --output, the corrupted table is written to stdout as CSV.

Kinds: ` + kindList() + `

Examples:
  synq corrupt adult --kind gaussian_noise --seed 42 --rows 0.1
  synq corrupt adult --kind categorical_shift --seed 7 --cols 0.5 -o adult_shift.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrupt(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "corruption kind (required)")
	_ = cmd.MarkFlagRequired("kind")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (required)")
	_ = cmd.MarkFlagRequired("seed")
	cmd.Flags().Float64Var(&opts.RowFraction, "rows", 0.1, "fraction of rows to corrupt")
	cmd.Flags().Float64Var(&opts.ColumnFraction, "cols", corrupt.DefaultColumnFraction, "fraction of eligible columns to corrupt")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the corrupted table to this CSV file")

	return cmd
}

func kindList() string {
	var names []string
	for _, k := range corrupt.Kinds() {
		if k.Implemented() {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, ", ")
}

func runCorrupt(opts *CorruptOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	kind, err := corrupt.ParseKind(opts.Kind)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCorrupt, "invalid corruption kind", err)
	}
	spec, err := corrupt.NewSpec(opts.RowFraction, opts.ColumnFraction)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCorrupt, "invalid fractions", err)
	}
	c, err := corrupt.New(kind, spec)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCorrupt, "cannot corrupt with "+kind.String(), err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := dataset.Open(ctx, opts.Config.DatasetsDir, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDataset, "failed to open datasets", err)
	}
	defer provider.Close()

	formatter.VerboseLog("Loading dataset %s from %s", name, opts.Config.DatasetsDir)
	ds, err := provider.Load(ctx, name)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeDataset, "dataset not found: "+name, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDataset, "failed to load dataset", err)
	}

	res, err := c.Corrupt(repro.NewSeeded(opts.Seed), ds.Table)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCorrupt, "corruption failed", err)
	}
	fingerprint, err := res.Table.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCorrupt, "failed to fingerprint table", err)
	}

	report := CorruptReport{
		Dataset:     name,
		Kind:        kind.String(),
		Seed:        opts.Seed,
		Rows:        res.Rows,
		Columns:     res.Columns,
		TotalRows:   res.Table.Len(),
		Fingerprint: fingerprint,
		Output:      opts.Output,
	}

	if opts.Output == "" && opts.Format == "text" {
		// CSV on stdout; the summary goes to stderr
		if err := res.Table.WriteCSV(cmd.OutOrStdout()); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeCorrupt, "failed to write table", err)
		}
		return report.RenderText(formatter.GetErrWriter())
	}

	if opts.Output != "" {
		var buf bytes.Buffer
		if err := res.Table.WriteCSV(&buf); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeCorrupt, "failed to write table", err)
		}
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCorrupt, "failed to write output", err)
		}
	}
	return formatter.Success(report)
}
