package memo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/synq/internal/canon"
	"github.com/roach88/synq/internal/identity"
)

// ReasonExists is the skip reason for identities already on record.
const ReasonExists = "already exists"

// Subject is an identity the gate can memoize: identity.Experiment or
// identity.Computation.
type Subject interface {
	Encode() (string, error)
	Digest() (string, error)
}

// Func is a gated computation. It returns the canonical result to record,
// or an error. Returning Skip(reason) marks the computation inapplicable.
type Func func(ctx context.Context) (canon.Object, error)

// SkipError asks the gate to record an inapplicable computation instead of
// a completion.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skip: " + e.Reason
}

// Skip returns an error that makes Gate.Run record reason as an
// inapplicable skip.
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// Outcome describes what the gate did with one subject.
type Outcome struct {
	ID     string
	Seq    int64
	State  State
	Reason string
	Status Status
	Result canon.Object
	// Err is the computation's own error for StatusFailed.
	Err error
}

// Ran reports whether the computation was invoked and completed.
func (o Outcome) Ran() bool {
	return o.State == Completed
}

// Failed reports whether the computation ran and returned an error.
func (o Outcome) Failed() bool {
	return o.State == Completed && o.Status == StatusFailed
}

// Gate decides whether a computation must run and records the decision.
type Gate struct {
	ledger Ledger
	rates  []int
	clock  *Clock
	runID  string
	logger *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithSweepRates sets the error rates (percent) of the enclosing sweep in
// configured order. Baselines are computed only at the first rate.
func WithSweepRates(rates []int) Option {
	return func(g *Gate) {
		g.rates = append([]int(nil), rates...)
	}
}

// WithClock shares a logical clock across gates.
func WithClock(c *Clock) Option {
	return func(g *Gate) { g.clock = c }
}

// WithRunID tags every ledger record with a sweep run token.
func WithRunID(id string) Option {
	return func(g *Gate) { g.runID = id }
}

// WithLogger sets the gate's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a gate over ledger.
func NewGate(ledger Ledger, opts ...Option) *Gate {
	g := &Gate{
		ledger: ledger,
		clock:  NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clock returns the gate's logical clock.
func (g *Gate) Clock() *Clock {
	return g.clock
}

// Run gates fn behind subject's identity.
//
// The returned error is non-nil only for an unencodable subject or a ledger
// failure. Errors from fn are recorded as failed completions and reported
// in Outcome.Err.
func (g *Gate) Run(ctx context.Context, subject Subject, fn Func) (Outcome, error) {
	id, err := subject.Encode()
	if err != nil {
		return Outcome{}, fmt.Errorf("gate: %w", err)
	}
	digest, err := subject.Digest()
	if err != nil {
		return Outcome{}, fmt.Errorf("gate: %w", err)
	}
	scope := scopeOf(subject)
	out := Outcome{ID: id, Seq: g.clock.Next(), State: Pending}
	log := g.logger.With("id", id, "seq", out.Seq)

	exists, err := g.ledger.Exists(ctx, id)
	if err != nil {
		return out, &LedgerError{Op: "exists", ID: id, Err: err}
	}
	if exists {
		log.Debug("skipping existing computation")
		return g.skip(ctx, out, digest, scope, SkippedExisting, ReasonExists)
	}
	if reason, ok := g.redundant(subject); ok {
		log.Debug("skipping redundant baseline", "reason", reason)
		return g.skip(ctx, out, digest, scope, SkippedRedundant, reason)
	}

	if out.State, err = transition(out.State, Running); err != nil {
		return out, err
	}
	log.Debug("running computation")
	result, runErr := fn(ctx)

	var skipErr *SkipError
	if errors.As(runErr, &skipErr) {
		log.Info("computation not applicable", "reason", skipErr.Reason)
		return g.skip(ctx, out, digest, scope, SkippedInapplicable, skipErr.Reason)
	}

	rec := Completion{
		ID:     id,
		Digest: digest,
		Scope:  scope,
		Status: StatusSucceeded,
		Result: []byte("{}"),
		Seq:    out.Seq,
		RunID:  g.runID,
	}
	if runErr != nil {
		rec.Status = StatusFailed
		rec.Error = runErr.Error()
		log.Warn("computation failed", "error", runErr)
	} else if result != nil {
		payload, err := canon.MarshalCanonical(result)
		if err != nil {
			rec.Status = StatusFailed
			rec.Error = fmt.Sprintf("encode result: %v", err)
			runErr = fmt.Errorf("encode result: %w", err)
		} else {
			rec.Result = payload
		}
	}
	if err := g.ledger.WriteCompletion(ctx, rec); err != nil {
		return out, &LedgerError{Op: "write completion", ID: id, Err: err}
	}

	if out.State, err = transition(out.State, Completed); err != nil {
		return out, err
	}
	out.Status = rec.Status
	out.Err = runErr
	if runErr == nil {
		out.Result = result
	}
	return out, nil
}

func (g *Gate) skip(ctx context.Context, out Outcome, digest string, scope Scope, to State, reason string) (Outcome, error) {
	next, err := transition(out.State, to)
	if err != nil {
		return out, err
	}
	rec := SkipRecord{
		ID:     out.ID,
		Digest: digest,
		Scope:  scope,
		State:  to,
		Reason: reason,
		Seq:    out.Seq,
		RunID:  g.runID,
	}
	if err := g.ledger.WriteSkip(ctx, rec); err != nil {
		return out, &LedgerError{Op: "write skip", ID: out.ID, Err: err}
	}
	out.State = next
	out.Reason = reason
	return out, nil
}

// redundant applies the baseline rule: a computation that only looks at
// clean data does not depend on the error rate, so it runs at the first
// configured rate only.
func (g *Gate) redundant(subject Subject) (string, bool) {
	c, ok := subject.(identity.Computation)
	if !ok || !c.IsBaseline() || len(g.rates) == 0 {
		return "", false
	}
	rate, ok := c.Experiment.Rate()
	if !ok || rate == g.rates[0] {
		return "", false
	}
	return fmt.Sprintf("baseline is only computed for error rate %d", g.rates[0]), true
}

func scopeOf(subject Subject) Scope {
	if _, ok := subject.(identity.Computation); ok {
		return ScopeEvaluation
	}
	return ScopeExperiment
}
