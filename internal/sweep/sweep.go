package sweep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/synq/internal/artifact"
	"github.com/roach88/synq/internal/canon"
	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/dataset"
	"github.com/roach88/synq/internal/identity"
	"github.com/roach88/synq/internal/memo"
	"github.com/roach88/synq/internal/plan"
	"github.com/roach88/synq/internal/repro"
	"github.com/roach88/synq/internal/table"
)

// ReasonNoColumns is the skip reason for a corruption with no eligible
// column, e.g. a categorical shift on an all-numeric table.
const ReasonNoColumns = "no columns to corrupt"

// Counts tallies gate outcomes.
type Counts struct {
	Completed           int `json:"completed"`
	Failed              int `json:"failed"`
	SkippedExisting     int `json:"skipped_existing"`
	SkippedRedundant    int `json:"skipped_redundant"`
	SkippedInapplicable int `json:"skipped_inapplicable"`
}

func (c *Counts) add(out memo.Outcome) {
	switch out.State {
	case memo.Completed:
		if out.Failed() {
			c.Failed++
		} else {
			c.Completed++
		}
	case memo.SkippedExisting:
		c.SkippedExisting++
	case memo.SkippedRedundant:
		c.SkippedRedundant++
	case memo.SkippedInapplicable:
		c.SkippedInapplicable++
	}
}

// Summary describes a finished sweep run.
type Summary struct {
	RunID       string `json:"run_id"`
	Configs     int    `json:"configs"`
	Experiments Counts `json:"experiments"`
	Evaluations Counts `json:"evaluations"`
	// Errors counts configurations abandoned before or between gated steps,
	// such as a missing dataset.
	Errors int `json:"errors"`
}

// Sweep runs a plan against a ledger.
type Sweep struct {
	plan       *plan.Plan
	ledger     memo.Ledger
	datasets   DatasetSource
	artifacts  artifact.Store
	generators map[identity.Generator]Generator
	evaluator  Evaluator
	tokens     RunTokenGenerator
	logger     *slog.Logger
	rc         *repro.Context
}

// Option configures a Sweep.
type Option func(*Sweep)

// WithGenerator registers g under name, replacing any previous one.
func WithGenerator(name identity.Generator, g Generator) Option {
	return func(s *Sweep) { s.generators[name] = g }
}

// WithEvaluator replaces the Profile evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(s *Sweep) { s.evaluator = e }
}

// WithRunTokens replaces the UUIDv7 run token generator.
func WithRunTokens(g RunTokenGenerator) Option {
	return func(s *Sweep) { s.tokens = g }
}

// WithLogger sets the sweep's logger. If nil, a discard logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweep) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a sweep over p. The bootstrap generator is registered by
// default.
func New(p *plan.Plan, ledger memo.Ledger, datasets DatasetSource, artifacts artifact.Store, opts ...Option) *Sweep {
	s := &Sweep{
		plan:       p,
		ledger:     ledger,
		datasets:   datasets,
		artifacts:  artifacts,
		generators: map[identity.Generator]Generator{identity.Bootstrap: Bootstrap{}},
		evaluator:  Profile{},
		tokens:     UUIDv7Generator{},
		logger:     slog.New(slog.DiscardHandler),
		rc:         repro.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sequencer is implemented by journals that can resume the logical clock.
type sequencer interface {
	LastSeq(ctx context.Context) (int64, error)
}

// Run executes every configuration of the plan in order. It returns an
// error only for a ledger failure or a cancelled context.
func (s *Sweep) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: s.tokens.Generate()}

	var start int64
	if seq, ok := s.ledger.(sequencer); ok {
		last, err := seq.LastSeq(ctx)
		if err != nil {
			return sum, &memo.LedgerError{Op: "last seq", Err: err}
		}
		start = last
	}
	gate := memo.NewGate(s.ledger,
		memo.WithSweepRates(s.plan.RatePercents()),
		memo.WithClock(memo.NewClockAt(start)),
		memo.WithRunID(sum.RunID),
		memo.WithLogger(s.logger),
	)

	configs := s.plan.Expand()
	log := s.logger.With("run", sum.RunID)
	log.Info("starting sweep", "configs", len(configs), "evaluations", len(s.plan.Evaluations))
	s.writeManifest(ctx, sum.RunID, configs)

	for _, cfg := range configs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Configs++
		err := s.runConfig(ctx, gate, cfg, &sum)
		if err == nil {
			continue
		}
		if memo.IsLedgerError(err) || errors.Is(err, context.Canceled) {
			log.Error("sweep aborted", "error", err)
			return sum, err
		}
		sum.Errors++
		log.Error("configuration failed",
			"dataset", cfg.Dataset, "seed", cfg.Seed, "generator", cfg.Generator, "error", err)
	}

	log.Info("sweep finished",
		"experiments_completed", sum.Experiments.Completed,
		"experiments_failed", sum.Experiments.Failed,
		"evaluations_completed", sum.Evaluations.Completed,
		"evaluations_failed", sum.Evaluations.Failed,
		"errors", sum.Errors)
	return sum, nil
}

func (s *Sweep) runConfig(ctx context.Context, gate *memo.Gate, cfg plan.Config, sum *Summary) error {
	s.rc.SetSeed(cfg.Seed)

	exp := cfg.Experiment(s.plan.Experiment)
	if err := exp.Validate(); err != nil {
		return err
	}
	log := s.logger.With("experiment", exp.String())

	ds, err := s.datasets.Load(ctx, cfg.Dataset)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", cfg.Dataset, err)
	}
	gen, ok := s.generators[cfg.Generator]
	if !ok {
		return fmt.Errorf("no generator registered for %s", cfg.Generator)
	}

	w := &workspace{s: s, cfg: cfg, exp: exp, ds: ds, gen: gen}
	out, err := gate.Run(ctx, exp, w.runExperiment)
	if err != nil {
		return err
	}
	sum.Experiments.add(out)
	s.writeMarker(ctx, exp, out)

	switch {
	case out.Failed():
		log.Warn("not evaluating failed experiment", "error", out.Err)
		return nil
	case out.State == memo.SkippedInapplicable:
		log.Info("not evaluating skipped experiment", "reason", out.Reason)
		return nil
	}

	for _, ev := range s.plan.Evaluations {
		// error-free experiments have no hurt targets
		if !exp.HasError() && !ev.Clean() {
			continue
		}
		comp := identity.Computation{Evaluation: ev, Experiment: exp}
		out, err := gate.Run(ctx, comp, func(ctx context.Context) (canon.Object, error) {
			return w.evaluate(ctx, ev)
		})
		if err != nil {
			return err
		}
		sum.Evaluations.add(out)
	}
	return nil
}

// writeManifest records the run's experiment keys in the tasks bucket.
// Failures are logged; the manifest is informational.
func (s *Sweep) writeManifest(ctx context.Context, runID string, configs []plan.Config) {
	keys := make([]string, 0, len(configs))
	for _, cfg := range configs {
		key, err := cfg.Experiment(s.plan.Experiment).Encode()
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	payload, err := canon.MarshalCanonical(canon.Object{
		"run_id":      canon.String(runID),
		"experiments": canon.Strings(keys),
	})
	if err == nil {
		err = s.artifacts.Put(ctx, artifact.Tasks, "runs/"+runID+".json", payload)
	}
	if err != nil {
		s.logger.Warn("failed to write run manifest", "error", err)
	}
}

// writeMarker files the experiment under finished-tasks, failed-tasks or
// skipped-tasks. Existing experiments get no marker.
func (s *Sweep) writeMarker(ctx context.Context, exp identity.Experiment, out memo.Outcome) {
	var bucket artifact.Bucket
	switch {
	case out.Failed():
		bucket = artifact.FailedTasks
	case out.Ran():
		bucket = artifact.FinishedTasks
	case out.State == memo.SkippedRedundant, out.State == memo.SkippedInapplicable:
		bucket = artifact.SkippedTasks
	default:
		return
	}

	marker := canon.Object{
		"id":    canon.String(out.ID),
		"seq":   canon.Int(out.Seq),
		"state": canon.String(out.State.String()),
	}
	if out.Reason != "" {
		marker["reason"] = canon.String(out.Reason)
	}
	if out.Err != nil {
		marker["error"] = canon.String(out.Err.Error())
	}

	p, err := exp.StoragePath()
	if err != nil {
		s.logger.Warn("failed to write task marker", "error", err)
		return
	}
	payload, err := canon.MarshalCanonical(marker)
	if err == nil {
		err = s.artifacts.Put(ctx, bucket, p+".json", payload)
	}
	if err != nil {
		s.logger.Warn("failed to write task marker", "bucket", bucket, "error", err)
	}
}

// upload stores t as CSV under the experiment's data key.
func (s *Sweep) upload(ctx context.Context, bucket artifact.Bucket, exp identity.Experiment, t *table.Table) (string, error) {
	p, err := exp.StoragePath()
	if err != nil {
		return "", err
	}
	key := artifact.DataKey(p, ".csv")
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return "", err
	}
	if err := s.artifacts.Put(ctx, bucket, key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	return key, nil
}

// workspace holds the tables of one configuration. Each is built on first
// use; all draws reseed from the configuration's seed, so a table rebuilt
// on a later run equals the one built originally.
type workspace struct {
	s   *Sweep
	cfg plan.Config
	exp identity.Experiment
	ds  *dataset.Dataset
	gen Generator

	hurt          *corrupt.Result
	synthetic     *table.Table
	syntheticHurt *table.Table
}

func (w *workspace) runExperiment(ctx context.Context) (canon.Object, error) {
	result := canon.Object{"rows": canon.Int(w.ds.Table.Len())}

	var synth *table.Table
	if w.exp.HasError() {
		res, err := w.corrupted()
		if err != nil {
			return nil, err
		}
		if _, err := w.s.upload(ctx, artifact.Real, w.exp, res.Table); err != nil {
			return nil, err
		}
		result["affected_rows"] = canon.Int(len(res.Rows))
		result["affected_columns"] = canon.Strings(res.Columns)

		if synth, err = w.hurtSynthetic(ctx); err != nil {
			return nil, err
		}
	} else {
		var err error
		if synth, err = w.cleanSynthetic(ctx); err != nil {
			return nil, err
		}
	}

	key, err := w.s.upload(ctx, artifact.Synthetic, w.exp, synth)
	if err != nil {
		return nil, err
	}
	result["synthetic_rows"] = canon.Int(synth.Len())
	result["artifact"] = canon.String(key)
	return result, nil
}

func (w *workspace) evaluate(ctx context.Context, ev identity.Evaluation) (canon.Object, error) {
	targets := ev.Targets()
	tables := make([]*table.Table, len(targets))
	for i, t := range targets {
		tbl, err := w.target(ctx, t)
		if err != nil {
			return nil, err
		}
		tables[i] = tbl
	}
	return w.s.evaluator.Evaluate(ctx, EvaluationInput{
		Method:   ev.Method,
		Targets:  targets,
		Tables:   tables,
		Metadata: w.ds.Metadata,
	})
}

func (w *workspace) target(ctx context.Context, t identity.Target) (*table.Table, error) {
	switch t {
	case identity.Real:
		return w.ds.Table, nil
	case identity.Synthetic:
		return w.cleanSynthetic(ctx)
	case identity.RealHurt:
		res, err := w.corrupted()
		if err != nil {
			return nil, err
		}
		return res.Table, nil
	case identity.SyntheticHurt:
		return w.hurtSynthetic(ctx)
	default:
		return nil, fmt.Errorf("unknown evaluation target %q", t)
	}
}

func (w *workspace) corrupted() (*corrupt.Result, error) {
	if w.hurt != nil {
		return w.hurt, nil
	}
	if w.cfg.ErrorKind == nil {
		return nil, errors.New("experiment injects no error")
	}
	spec, err := corrupt.NewSpec(w.cfg.ErrorRate, w.s.plan.ColumnFraction)
	if err != nil {
		return nil, err
	}
	c, err := corrupt.New(*w.cfg.ErrorKind, spec)
	if err != nil {
		return nil, err
	}
	res, err := c.Corrupt(w.s.rc, w.ds.Table)
	if err != nil {
		return nil, err
	}
	if res.NoEligibleColumns() {
		return nil, memo.Skip(ReasonNoColumns)
	}
	w.hurt = res
	return res, nil
}

func (w *workspace) cleanSynthetic(ctx context.Context) (*table.Table, error) {
	if w.synthetic != nil {
		return w.synthetic, nil
	}
	out, err := w.generate(ctx, Input{Table: w.ds.Table, Rows: []int64{}, Columns: []string{}, Metadata: w.ds.Metadata})
	if err != nil {
		return nil, err
	}
	w.synthetic = out
	return out, nil
}

func (w *workspace) hurtSynthetic(ctx context.Context) (*table.Table, error) {
	if w.syntheticHurt != nil {
		return w.syntheticHurt, nil
	}
	res, err := w.corrupted()
	if err != nil {
		return nil, err
	}
	out, err := w.generate(ctx, Input{Table: res.Table, Rows: res.Rows, Columns: res.Columns, Metadata: w.ds.Metadata})
	if err != nil {
		return nil, err
	}
	w.syntheticHurt = out
	return out, nil
}

func (w *workspace) generate(ctx context.Context, in Input) (*table.Table, error) {
	out, err := w.gen.Generate(ctx, w.s.rc, in)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", w.cfg.Generator, err)
	}
	return out, nil
}
