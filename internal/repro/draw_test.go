package repro

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rows is a minimal Reindexable used to exercise ShuffleReindex.
type rows []int

func (r rows) Len() int { return len(r) }

func (r rows) Reorder(order []int) rows {
	out := make(rows, len(order))
	for i, p := range order {
		out[i] = r[p]
	}
	return out
}

func TestSampleFrom_EmptyInput(t *testing.T) {
	// Empty input never consults the seed.
	out, err := SampleFrom(New(), []string{}, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSampleFrom_Count(t *testing.T) {
	c := NewSeeded(42)
	elements := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name    string
		howMany float64
		opts    []SampleOption
		want    int
	}{
		{"rounds half up", 2.5, nil, 3},
		{"rounds down", 2.4, nil, 2},
		{"at least one by default", 0.2, nil, 1},
		{"explicit minimum", 1, []SampleOption{AtLeast(4)}, 4},
		{"zero minimum", 0.2, []SampleOption{AtLeast(0)}, 0},
		{"clamped without replacement", 50, nil, 10},
		{"unclamped with replacement", 15, []SampleOption{WithReplacement()}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SampleFrom(c, elements, tt.howMany, tt.opts...)
			require.NoError(t, err)
			assert.Len(t, out, tt.want)
		})
	}
}

func TestSampleFrom_NoReplacementIsDistinct(t *testing.T) {
	c := NewSeeded(7)
	elements := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	out, err := SampleFrom(c, elements, 10)
	require.NoError(t, err)

	sorted := slices.Clone(out)
	slices.Sort(sorted)
	assert.Equal(t, elements, sorted, "requesting every element returns all of them")
}

func TestSampleFrom_Deterministic(t *testing.T) {
	elements := []string{"a", "b", "c", "d", "e", "f"}

	first, err := SampleFrom(NewSeeded(123), elements, 3)
	require.NoError(t, err)
	second, err := SampleFrom(NewSeeded(123), elements, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDrawsRepeatAfterReseed(t *testing.T) {
	// Every draw re-seeds, so identical calls on one context agree.
	c := NewSeeded(9)

	a, err := c.Normal(0, 1, 4)
	require.NoError(t, err)
	b, err := c.Normal(0, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	p1, err := c.Permutation(8)
	require.NoError(t, err)
	p2, err := c.Permutation(8)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a, err := NewSeeded(1).Permutation(20)
	require.NoError(t, err)
	b, err := NewSeeded(2).Permutation(20)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUniform_Bounds(t *testing.T) {
	out, err := NewSeeded(5).Uniform(1, 5, 200)
	require.NoError(t, err)
	require.Len(t, out, 200)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 1.0)
		assert.Less(t, v, 5.0)
	}
}

func TestNormal_ZeroScale(t *testing.T) {
	out, err := NewSeeded(5).Normal(3, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3, 3}, out)
}

func TestDerangement(t *testing.T) {
	x := []string{"a", "b", "c", "d", "e"}

	for seed := int64(0); seed < 25; seed++ {
		out, err := Derangement(NewSeeded(seed), x)
		require.NoError(t, err)
		require.Len(t, out, len(x))

		for i := range x {
			assert.NotEqual(t, x[i], out[i], "seed %d: position %d kept its element", seed, i)
		}
		assert.ElementsMatch(t, x, out)
	}
}

func TestDerangement_ShortInputs(t *testing.T) {
	c := NewSeeded(1)

	out, err := Derangement(c, []int{})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = Derangement(c, []int{4})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, out)
}

func TestShuffleReindex(t *testing.T) {
	in := rows{10, 11, 12, 13, 14, 15}

	out, order, err := ShuffleReindex(NewSeeded(3), in)
	require.NoError(t, err)
	assert.ElementsMatch(t, in, out)
	for i, p := range order {
		assert.Equal(t, in[p], out[i])
	}

	again, _, err := ShuffleReindex(NewSeeded(3), in)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
