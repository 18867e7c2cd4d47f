package repro

import (
	"math/rand/v2"
)

// Context is the seeded source of randomness for one sweep.
type Context struct {
	seed   int64
	seeded bool
	src    *rand.PCG
	rng    *rand.Rand
}

// New returns a Context with no seed. Every draw fails until SetSeed is called.
func New() *Context {
	src := rand.NewPCG(0, 0)
	return &Context{src: src, rng: rand.New(src)}
}

// NewSeeded returns a Context seeded with seed.
func NewSeeded(seed int64) *Context {
	c := New()
	c.SetSeed(seed)
	return c
}

// SetSeed replaces the stored seed. The last call wins.
func (c *Context) SetSeed(seed int64) {
	c.seed = seed
	c.seeded = true
}

// Seed returns the stored seed and whether one has been set.
func (c *Context) Seed() (int64, bool) {
	return c.seed, c.seeded
}

// EnsureReproducibility re-seeds the generator from the stored seed.
// It must run immediately before every draw.
func (c *Context) EnsureReproducibility() error {
	return c.reseed("ensure reproducibility")
}

func (c *Context) reseed(op string) error {
	if !c.seeded {
		return &ReproducibilityError{Op: op}
	}
	s := uint64(c.seed)
	c.src.Seed(s, s^0x9e3779b97f4a7c15)
	return nil
}
