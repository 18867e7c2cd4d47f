package identity

import (
	"fmt"
	"strings"

	"github.com/roach88/synq/internal/canon"
)

// Evaluation identifies one metric over one or two targets.
type Evaluation struct {
	Method Method
	First  Target
	// Second is nil for single-target evaluations.
	Second *Target
}

// NewEvaluation builds an evaluation over the given targets (one or two).
func NewEvaluation(method Method, targets ...Target) (Evaluation, error) {
	ev := Evaluation{Method: method}
	switch len(targets) {
	case 1:
		ev.First = targets[0]
	case 2:
		ev.First = targets[0]
		second := targets[1]
		ev.Second = &second
	default:
		return Evaluation{}, &InvalidError{Field: "targets", Message: fmt.Sprintf("want 1 or 2 targets, got %d", len(targets))}
	}
	if err := ev.Validate(); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

// Targets returns the evaluation targets in order.
func (ev Evaluation) Targets() []Target {
	if ev.Second == nil {
		return []Target{ev.First}
	}
	return []Target{ev.First, *ev.Second}
}

// Clean reports whether every target is derived from uncorrupted data.
func (ev Evaluation) Clean() bool {
	for _, t := range ev.Targets() {
		if !t.Clean() {
			return false
		}
	}
	return true
}

// Validate checks method and targets.
func (ev Evaluation) Validate() error {
	if _, err := ParseMethod(string(ev.Method)); err != nil {
		return &InvalidError{Field: "method", Message: err.Error()}
	}
	for _, t := range ev.Targets() {
		if _, err := ParseTarget(string(t)); err != nil {
			return &InvalidError{Field: "targets", Message: err.Error()}
		}
	}
	return nil
}

// Encode renders method#first#second, with NULL for a missing second target.
func (ev Evaluation) Encode() (string, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	second := Null
	if ev.Second != nil {
		second = string(*ev.Second)
	}
	return strings.Join([]string{string(ev.Method), string(ev.First), second}, Delimiter), nil
}

// String returns the key, or a diagnostic for an invalid identity.
func (ev Evaluation) String() string {
	key, err := ev.Encode()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return key
}

// DecodeEvaluation parses a key produced by Evaluation.Encode.
func DecodeEvaluation(key string) (Evaluation, error) {
	parts := strings.Split(key, Delimiter)
	if len(parts) != 3 {
		return Evaluation{}, &DecodeError{Key: key, Message: fmt.Sprintf("expected 3 fields, got %d", len(parts))}
	}
	method, err := ParseMethod(parts[0])
	if err != nil {
		return Evaluation{}, &DecodeError{Key: key, Field: "method", Message: err.Error()}
	}
	targets := []Target{}
	for i, p := range parts[1:] {
		if i == 1 && p == Null {
			break
		}
		t, err := ParseTarget(p)
		if err != nil {
			return Evaluation{}, &DecodeError{Key: key, Field: "targets", Message: err.Error()}
		}
		targets = append(targets, t)
	}
	return NewEvaluation(method, targets...)
}

// Computation is one evaluation of one experiment.
type Computation struct {
	Evaluation Evaluation
	Experiment Experiment
}

// Encode renders evaluation key + "/" + experiment key.
func (c Computation) Encode() (string, error) {
	ev, err := c.Evaluation.Encode()
	if err != nil {
		return "", err
	}
	exp, err := c.Experiment.Encode()
	if err != nil {
		return "", err
	}
	return ev + PathSeparator + exp, nil
}

// String returns the key, or a diagnostic for an invalid identity.
func (c Computation) String() string {
	key, err := c.Encode()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return key
}

// Digest returns the domain-separated content hash of the computation key.
func (c Computation) Digest() (string, error) {
	key, err := c.Encode()
	if err != nil {
		return "", err
	}
	return canon.HashWithDomain(canon.DomainComputation, []byte(key)), nil
}

// IsBaseline reports whether this computation only looks at clean data of
// an experiment that injects errors. Such a result is the same for every
// error rate of the sweep.
func (c Computation) IsBaseline() bool {
	return c.Experiment.HasError() && c.Evaluation.Clean()
}

// DecodeComputation parses a key produced by Computation.Encode.
func DecodeComputation(key string) (Computation, error) {
	evKey, expKey, ok := strings.Cut(key, PathSeparator)
	if !ok {
		return Computation{}, &DecodeError{Key: key, Message: "missing '/' between evaluation and experiment"}
	}
	ev, err := DecodeEvaluation(evKey)
	if err != nil {
		return Computation{}, err
	}
	exp, err := DecodeExperiment(expKey)
	if err != nil {
		return Computation{}, err
	}
	return Computation{Evaluation: ev, Experiment: exp}, nil
}
