package repro

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SampleOption adjusts a SampleFrom call.
type SampleOption func(*sampleConfig)

type sampleConfig struct {
	atLeast         int
	withReplacement bool
}

// AtLeast sets the minimum number of elements drawn. The default is 1.
func AtLeast(n int) SampleOption {
	return func(c *sampleConfig) { c.atLeast = n }
}

// WithReplacement allows the same element to be drawn more than once.
func WithReplacement() SampleOption {
	return func(c *sampleConfig) { c.withReplacement = true }
}

// SampleCount returns max(round(howMany), atLeast), the number of elements
// SampleFrom draws before clamping to the population size.
func SampleCount(howMany float64, atLeast int) int {
	return max(int(math.Round(howMany)), atLeast)
}

// SampleFrom draws max(round(howMany), atLeast) elements from elements.
// Empty input yields an empty result without consulting the seed. Without
// replacement, a request at or above len(elements) yields every element in
// drawn order.
func SampleFrom[T any](c *Context, elements []T, howMany float64, opts ...SampleOption) ([]T, error) {
	if len(elements) == 0 {
		return []T{}, nil
	}

	cfg := sampleConfig{atLeast: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := c.reseed("sample"); err != nil {
		return nil, err
	}

	n := SampleCount(howMany, cfg.atLeast)
	if n <= 0 {
		return []T{}, nil
	}

	if cfg.withReplacement {
		out := make([]T, n)
		for i := range out {
			out[i] = elements[c.rng.IntN(len(elements))]
		}
		return out, nil
	}

	n = min(n, len(elements))
	perm := c.rng.Perm(len(elements))
	out := make([]T, n)
	for i := range out {
		out[i] = elements[perm[i]]
	}
	return out, nil
}

// Uniform draws size values from the half-open interval [low, high).
func (c *Context) Uniform(low, high float64, size int) ([]float64, error) {
	if err := c.reseed("uniform"); err != nil {
		return nil, err
	}
	dist := distuv.Uniform{Min: low, Max: high, Src: c.src}
	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out, nil
}

// Normal draws size values from N(loc, scale^2). A zero scale yields loc.
func (c *Context) Normal(loc, scale float64, size int) ([]float64, error) {
	if err := c.reseed("normal"); err != nil {
		return nil, err
	}
	out := make([]float64, size)
	if scale == 0 {
		for i := range out {
			out[i] = loc
		}
		return out, nil
	}
	dist := distuv.Normal{Mu: loc, Sigma: scale, Src: c.src}
	for i := range out {
		out[i] = dist.Rand()
	}
	return out, nil
}

// Permutation returns a uniformly random ordering of 0..n-1.
func (c *Context) Permutation(n int) ([]int, error) {
	if err := c.reseed("permutation"); err != nil {
		return nil, err
	}
	return c.rng.Perm(n), nil
}

// Derangement returns a permutation of x in which no element keeps its
// position. Slices of length 0 or 1 are returned unchanged.
//
// The generator is re-seeded once and permutations are then drawn from the
// same stream until one has no fixed point; re-seeding per attempt would
// repeat the first permutation forever.
func Derangement[T any](c *Context, x []T) ([]T, error) {
	if err := c.reseed("derangement"); err != nil {
		return nil, err
	}

	out := make([]T, len(x))
	if len(x) < 2 {
		copy(out, x)
		return out, nil
	}

	for {
		perm := c.rng.Perm(len(x))
		if hasFixedPoint(perm) {
			continue
		}
		for i, p := range perm {
			out[i] = x[p]
		}
		return out, nil
	}
}

func hasFixedPoint(perm []int) bool {
	for i, p := range perm {
		if i == p {
			return true
		}
	}
	return false
}

// Reindexable is a row container that can be reordered into a copy with a
// fresh sequential index.
type Reindexable[T any] interface {
	Len() int
	Reorder(order []int) T
}

// ShuffleReindex returns a row-shuffled copy of t with a fresh 0..n-1 index,
// together with the order used: row i of the copy is row order[i] of t.
func ShuffleReindex[T Reindexable[T]](c *Context, t T) (T, []int, error) {
	if err := c.reseed("shuffle reindex"); err != nil {
		var zero T
		return zero, nil, err
	}
	order := c.rng.Perm(t.Len())
	return t.Reorder(order), order, nil
}
