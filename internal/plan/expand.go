package plan

import (
	"github.com/roach88/synq/internal/corrupt"
	"github.com/roach88/synq/internal/identity"
)

// Config is one experiment configuration of a sweep.
type Config struct {
	Seed        int64
	Dataset     string
	Generator   identity.Generator
	Perfectness identity.Perfectness
	// ErrorKind is nil for error-free configurations.
	ErrorKind *corrupt.Kind
	// ErrorRate is the row fraction to corrupt.
	ErrorRate float64
}

// Experiment builds the identity of c. The seed is taken from c, not from
// a RandomContext, since expansion happens before any seed is set.
func (c Config) Experiment(kind identity.ExperimentKind) identity.Experiment {
	e := identity.Experiment{
		Kind:        kind,
		Dataset:     c.Dataset,
		Seed:        c.Seed,
		Perfectness: c.Perfectness,
		Generator:   c.Generator,
	}
	if c.ErrorKind != nil {
		e = e.WithError(*c.ErrorKind, c.ErrorRate)
	}
	return e
}

// Expand lists configurations in sweep order: seed, dataset, generator,
// error kind, error rate, perfectness. A perfect level contributes one
// error-free configuration per (seed, dataset, generator), placed before
// that group's corrupted configurations.
func (p *Plan) Expand() []Config {
	perfect := false
	var imperfect []identity.Perfectness
	for _, level := range p.Perfectness {
		if level == identity.Perfect {
			perfect = true
			continue
		}
		imperfect = append(imperfect, level)
	}

	var out []Config
	for _, seed := range p.Seeds {
		for _, ds := range p.Datasets {
			for _, gen := range p.Generators {
				base := Config{Seed: seed, Dataset: ds, Generator: gen}
				if perfect {
					c := base
					c.Perfectness = identity.Perfect
					out = append(out, c)
				}
				for _, kind := range p.ErrorKinds {
					for _, rate := range p.ErrorRates {
						for _, level := range imperfect {
							c := base
							k := kind
							c.ErrorKind = &k
							c.ErrorRate = rate
							c.Perfectness = level
							out = append(out, c)
						}
					}
				}
			}
		}
	}
	return out
}
