package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/synq/internal/artifact"
	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/identity"
	"github.com/roach88/synq/internal/memo"
)

// IDEncodeOptions holds flags for id encode.
type IDEncodeOptions struct {
	*RootOptions
	Kind        string
	Dataset     string
	Seed        int64
	Perfectness string
	ErrorKind   string
	ErrorRate   float64
	Generator   string
	Method      string
	Targets     []string
}

// ExperimentFields is the decoded form of an experiment key.
type ExperimentFields struct {
	Kind        string `json:"kind"`
	Dataset     string `json:"dataset"`
	Seed        int64  `json:"seed"`
	Perfectness string `json:"perfectness"`
	ErrorKind   string `json:"error_kind,omitempty"`
	ErrorRate   *int   `json:"error_rate,omitempty"`
	Generator   string `json:"generator"`
}

// EvaluationFields is the decoded form of an evaluation key.
type EvaluationFields struct {
	Method   string   `json:"method"`
	Targets  []string `json:"targets"`
	Baseline bool     `json:"baseline"`
}

// IdentityReport describes an experiment or computation key.
type IdentityReport struct {
	Key         string            `json:"key"`
	Digest      string            `json:"digest"`
	StoragePath string            `json:"storage_path"`
	DataKey     string            `json:"data_key"`
	Experiment  ExperimentFields  `json:"experiment"`
	Evaluation  *EvaluationFields `json:"evaluation,omitempty"`
}

// RenderText implements TextRenderer.
func (r IdentityReport) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "key:          %s\n", r.Key)
	fmt.Fprintf(w, "digest:       %s\n", r.Digest)
	fmt.Fprintf(w, "storage path: %s\n", r.StoragePath)
	fmt.Fprintf(w, "data key:     %s\n", r.DataKey)
	e := r.Experiment
	fmt.Fprintf(w, "experiment:   %s\n", e.Kind)
	fmt.Fprintf(w, "  dataset:     %s\n", e.Dataset)
	fmt.Fprintf(w, "  seed:        %d\n", e.Seed)
	fmt.Fprintf(w, "  perfectness: %s\n", e.Perfectness)
	if e.ErrorKind != "" {
		fmt.Fprintf(w, "  error kind:  %s\n", e.ErrorKind)
	}
	if e.ErrorRate != nil {
		fmt.Fprintf(w, "  error rate:  %d%%\n", *e.ErrorRate)
	}
	fmt.Fprintf(w, "  generator:   %s\n", e.Generator)
	if ev := r.Evaluation; ev != nil {
		fmt.Fprintf(w, "evaluation:   %s\n", ev.Method)
		fmt.Fprintf(w, "  targets:     %s\n", strings.Join(ev.Targets, ", "))
		fmt.Fprintf(w, "  baseline:    %t\n", ev.Baseline)
	}
	return nil
}

// NewIDCommand creates the id command group.
func NewIDCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Encode and decode experiment identities",
		Long: `Work with experiment and computation keys.

An experiment key has seven '#'-separated fields:
  kind#dataset#seed#perfectness#error_kind#error_rate#generator
with NULL for an absent error kind or rate. A computation key prefixes an
evaluation key (method#target#target) and a '/'.`,
	}

	cmd.AddCommand(newIDEncodeCommand(rootOpts))
	cmd.AddCommand(newIDDecodeCommand(rootOpts))
	cmd.AddCommand(newIDPathCommand(rootOpts))
	return cmd
}

func newIDEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IDEncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a key from its fields",
		Long: `Build an experiment key, or a computation key when --method is set.

Examples:
  synq id encode --dataset adult --seed 42 --generator ctgan
  synq id encode --dataset adult --seed 42 --perfectness imperfect \
    --error-kind gaussian_noise --error-rate 0.2 --generator ctgan --method QLT --targets R,S`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIDEncode(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "normal", "experiment kind")
	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "dataset name (required)")
	_ = cmd.MarkFlagRequired("dataset")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed")
	cmd.Flags().StringVar(&opts.Perfectness, "perfectness", "perfect", "perfect|imperfect|semiperfect")
	cmd.Flags().StringVar(&opts.ErrorKind, "error-kind", "", "injected corruption kind")
	cmd.Flags().Float64Var(&opts.ErrorRate, "error-rate", 0, "injected error rate as a fraction")
	cmd.Flags().StringVar(&opts.Generator, "generator", "", "generator (required)")
	_ = cmd.MarkFlagRequired("generator")
	cmd.Flags().StringVar(&opts.Method, "method", "", "evaluation method")
	cmd.Flags().StringSliceVar(&opts.Targets, "targets", nil, "evaluation targets (R, S, RH, SH)")

	return cmd
}

func runIDEncode(opts *IDEncodeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	exp, err := opts.experiment()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIdentity, "invalid experiment", err)
	}

	var ev *identity.Evaluation
	if opts.Method != "" {
		e, err := opts.evaluation()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeIdentity, "invalid evaluation", err)
		}
		ev = &e
	} else if len(opts.Targets) > 0 {
		return formatter.Fail(ExitCommandError, ErrCodeIdentity, "--targets requires --method", nil)
	}

	report, err := buildIdentityReport(exp, ev)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeIdentity, "invalid identity", err)
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintln(formatter.Writer, report.Key)
	return nil
}

func (o *IDEncodeOptions) experiment() (identity.Experiment, error) {
	kind, err := identity.ParseExperimentKind(o.Kind)
	if err != nil {
		return identity.Experiment{}, err
	}
	level, err := identity.ParsePerfectness(o.Perfectness)
	if err != nil {
		return identity.Experiment{}, err
	}
	exp := identity.Experiment{
		Kind:        kind,
		Dataset:     o.Dataset,
		Seed:        o.Seed,
		Perfectness: level,
		Generator:   identity.Generator(o.Generator),
	}
	if o.ErrorKind != "" {
		ek, err := corrupt.ParseKind(o.ErrorKind)
		if err != nil {
			return identity.Experiment{}, err
		}
		if !(o.ErrorRate >= 0 && o.ErrorRate <= 1) {
			return identity.Experiment{}, fmt.Errorf("error rate %v is outside [0, 1]", o.ErrorRate)
		}
		exp = exp.WithError(ek, o.ErrorRate)
	} else if o.ErrorRate != 0 {
		return identity.Experiment{}, fmt.Errorf("--error-rate requires --error-kind")
	}
	return exp, exp.Validate()
}

func (o *IDEncodeOptions) evaluation() (identity.Evaluation, error) {
	method, err := identity.ParseMethod(o.Method)
	if err != nil {
		return identity.Evaluation{}, err
	}
	targets := make([]identity.Target, len(o.Targets))
	for i, s := range o.Targets {
		if targets[i], err = identity.ParseTarget(strings.TrimSpace(s)); err != nil {
			return identity.Evaluation{}, err
		}
	}
	return identity.NewEvaluation(method, targets...)
}

func newIDDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <key>",
		Short: "Show the fields of a key",
		Long: `Decode an experiment or computation key.

Examples:
  synq id decode 'NOR#adult#42#IMP#gaussian_noise#20#ctgan'
  synq id decode 'QLT#R#S/NOR#adult#42#IMP#gaussian_noise#20#ctgan' --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			report, err := decodeKey(args[0])
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeIdentity, "invalid key", err)
			}
			return formatter.Success(report)
		},
	}
}

func newIDPathCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path <key>",
		Short: "Print the artifact storage path of a key",
		Long: `Print the storage path of an experiment key: its fields joined with '/',
NULL fields omitted. For a computation key, the experiment's path is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			report, err := decodeKey(args[0])
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeIdentity, "invalid key", err)
			}
			if rootOpts.Format == "json" {
				return formatter.Success(map[string]string{
					"storage_path": report.StoragePath,
					"data_key":     report.DataKey,
				})
			}
			fmt.Fprintln(formatter.Writer, report.StoragePath)
			return nil
		},
	}
}

// decodeKey accepts an experiment key or a computation key.
func decodeKey(key string) (IdentityReport, error) {
	if strings.Contains(key, identity.PathSeparator) {
		c, err := identity.DecodeComputation(key)
		if err != nil {
			return IdentityReport{}, err
		}
		return buildIdentityReport(c.Experiment, &c.Evaluation)
	}
	exp, err := identity.DecodeExperiment(key)
	if err != nil {
		return IdentityReport{}, err
	}
	return buildIdentityReport(exp, nil)
}

func buildIdentityReport(exp identity.Experiment, ev *identity.Evaluation) (IdentityReport, error) {
	var subject memo.Subject = exp
	if ev != nil {
		subject = identity.Computation{Evaluation: *ev, Experiment: exp}
	}
	key, err := subject.Encode()
	if err != nil {
		return IdentityReport{}, err
	}
	digest, err := subject.Digest()
	if err != nil {
		return IdentityReport{}, err
	}
	path, err := exp.StoragePath()
	if err != nil {
		return IdentityReport{}, err
	}

	report := IdentityReport{
		Key:         key,
		Digest:      digest,
		StoragePath: path,
		DataKey:     artifact.DataKey(path, ".csv"),
		Experiment: ExperimentFields{
			Kind:        exp.Kind.String(),
			Dataset:     exp.Dataset,
			Seed:        exp.Seed,
			Perfectness: exp.Perfectness.String(),
			ErrorRate:   exp.ErrorRate,
			Generator:   string(exp.Generator),
		},
	}
	if exp.ErrorKind != nil {
		report.Experiment.ErrorKind = exp.ErrorKind.String()
	}
	if ev != nil {
		targets := make([]string, 0, 2)
		for _, t := range ev.Targets() {
			targets = append(targets, string(t))
		}
		report.Evaluation = &EvaluationFields{
			Method:   string(ev.Method),
			Targets:  targets,
			Baseline: identity.Computation{Evaluation: *ev, Experiment: exp}.IsBaseline(),
		}
	}
	return report, nil
}
