package identity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/synq/internal/canon"
	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/repro"
)

const (
	// Delimiter separates fields in an encoded key.
	Delimiter = "#"
	// Null stands in for an absent optional field.
	Null = "NULL"
	// PathSeparator separates fields in a storage path.
	PathSeparator = "/"

	// experimentFieldsV1 is the field count of schema version 1.
	experimentFieldsV1 = 7
)

// Experiment identifies one experiment configuration.
type Experiment struct {
	Kind        ExperimentKind
	Dataset     string
	Seed        int64
	Perfectness Perfectness
	// ErrorKind is nil for experiments without injected errors.
	ErrorKind *corrupt.Kind
	// ErrorRate is the error rate as an integer percentage, nil when absent.
	ErrorRate *int
	Generator Generator
}

// NewExperiment builds an error-free experiment identity, reading the seed
// from rc. The dataset name is NFC normalized.
func NewExperiment(rc *repro.Context, kind ExperimentKind, dataset string, perfectness Perfectness, generator Generator) (Experiment, error) {
	seed, ok := rc.Seed()
	if !ok {
		return Experiment{}, fmt.Errorf("new experiment: %w", repro.ErrUnseeded)
	}
	return Experiment{
		Kind:        kind,
		Dataset:     norm.NFC.String(dataset),
		Seed:        seed,
		Perfectness: perfectness,
		Generator:   generator,
	}, nil
}

// WithError returns a copy of e with an injected error kind and rate.
// The rate is a fraction in [0, 1] and is stored as a rounded percentage.
func (e Experiment) WithError(kind corrupt.Kind, rate float64) Experiment {
	pct := RatePercent(rate)
	e.ErrorKind = &kind
	e.ErrorRate = &pct
	return e
}

// RatePercent converts a fraction to an integer percentage, rounding to
// the nearest integer so 0.29 maps to 29.
func RatePercent(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// HasError reports whether the experiment injects a data error.
func (e Experiment) HasError() bool {
	return e.ErrorKind != nil
}

// Rate returns the error rate percentage, if any.
func (e Experiment) Rate() (int, bool) {
	if e.ErrorRate == nil {
		return 0, false
	}
	return *e.ErrorRate, true
}

// Validate checks that every field can be encoded and decoded back.
func (e Experiment) Validate() error {
	if !e.Kind.valid() {
		return &InvalidError{Field: "kind", Message: fmt.Sprintf("unknown kind %d", int(e.Kind))}
	}
	if err := validateToken("dataset", e.Dataset); err != nil {
		return err
	}
	if !norm.NFC.IsNormalString(e.Dataset) {
		return &InvalidError{Field: "dataset", Message: "not NFC normalized"}
	}
	if !e.Perfectness.valid() {
		return &InvalidError{Field: "perfectness", Message: fmt.Sprintf("unknown perfectness %d", int(e.Perfectness))}
	}
	if e.ErrorKind != nil {
		if _, err := corrupt.ParseKind(e.ErrorKind.String()); err != nil {
			return &InvalidError{Field: "error_kind", Message: err.Error()}
		}
	}
	if e.ErrorRate != nil && (*e.ErrorRate < 0 || *e.ErrorRate > 100) {
		return &InvalidError{Field: "error_rate", Message: fmt.Sprintf("%d%% is outside [0, 100]", *e.ErrorRate)}
	}
	return validateToken("generator", string(e.Generator))
}

func validateToken(field, s string) error {
	switch {
	case s == "":
		return &InvalidError{Field: field, Message: "must not be empty"}
	case s == Null:
		return &InvalidError{Field: field, Message: "must not equal the NULL sentinel"}
	case strings.Contains(s, Delimiter), strings.Contains(s, PathSeparator):
		return &InvalidError{Field: field, Message: fmt.Sprintf("must not contain %q or %q", Delimiter, PathSeparator)}
	}
	return nil
}

func (e Experiment) fields() []string {
	errKind, errRate := Null, Null
	if e.ErrorKind != nil {
		errKind = e.ErrorKind.String()
	}
	if e.ErrorRate != nil {
		errRate = strconv.Itoa(*e.ErrorRate)
	}
	return []string{
		e.Kind.Short(),
		e.Dataset,
		strconv.FormatInt(e.Seed, 10),
		e.Perfectness.Short(),
		errKind,
		errRate,
		string(e.Generator),
	}
}

// Encode renders the experiment key.
func (e Experiment) Encode() (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	return strings.Join(e.fields(), Delimiter), nil
}

// String returns the key, or a diagnostic for an invalid identity.
func (e Experiment) String() string {
	key, err := e.Encode()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return key
}

// StoragePath joins the present fields with '/' for artifact layout.
func (e Experiment) StoragePath() (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	var parts []string
	for _, f := range e.fields() {
		if f != Null {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, PathSeparator), nil
}

// Digest returns the domain-separated content hash of the experiment key.
func (e Experiment) Digest() (string, error) {
	key, err := e.Encode()
	if err != nil {
		return "", err
	}
	return canon.HashWithDomain(canon.DomainExperiment, []byte(key)), nil
}

// DecodeExperiment parses a key produced by Encode.
func DecodeExperiment(key string) (Experiment, error) {
	parts := strings.Split(key, Delimiter)
	switch len(parts) {
	case experimentFieldsV1:
		return decodeExperimentV1(key, parts)
	default:
		return Experiment{}, &DecodeError{
			Key:     key,
			Message: fmt.Sprintf("expected %d fields, got %d", experimentFieldsV1, len(parts)),
		}
	}
}

func decodeExperimentV1(key string, parts []string) (Experiment, error) {
	fail := func(field string, err error) (Experiment, error) {
		return Experiment{}, &DecodeError{Key: key, Field: field, Message: err.Error()}
	}

	var e Experiment
	var err error
	if e.Kind, err = ParseExperimentKind(parts[0]); err != nil {
		return fail("kind", err)
	}
	e.Dataset = parts[1]
	if e.Seed, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return fail("seed", err)
	}
	if e.Perfectness, err = ParsePerfectness(parts[3]); err != nil {
		return fail("perfectness", err)
	}
	if parts[4] != Null {
		kind, err := corrupt.ParseKind(parts[4])
		if err != nil {
			return fail("error_kind", err)
		}
		e.ErrorKind = &kind
	}
	if parts[5] != Null {
		rate, err := strconv.Atoi(parts[5])
		if err != nil {
			return fail("error_rate", err)
		}
		e.ErrorRate = &rate
	}
	e.Generator = Generator(parts[6])

	if err := e.Validate(); err != nil {
		var ie *InvalidError
		if errors.As(err, &ie) {
			return fail(ie.Field, errors.New(ie.Message))
		}
		return fail("", err)
	}
	return e, nil
}
