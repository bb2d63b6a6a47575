package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedMakesDrawsRepeatable(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64(), "equally seeded sources must agree on draw %d", i)
	}

	a.Seed(7)
	b.Seed(7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000), "re-seeded sources must agree on draw %d", i)
	}
}

func TestFloat64RangeBounds(t *testing.T) {
	s := New(1)
	for i := 0; i < 1000; i++ {
		v := s.Float64Range(2.5, 7.5)
		assert.GreaterOrEqual(t, v, 2.5)
		assert.Less(t, v, 7.5)
	}

	assert.Equal(t, 3.0, s.Float64Range(3.0, 3.0), "an empty range collapses to its low bound")
	assert.Equal(t, 3.0, s.Float64Range(3.0, 1.0), "an inverted range collapses to its low bound")
}

func TestIntnBounds(t *testing.T) {
	s := New(2)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.Intn(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 5, "1000 draws should hit every value of a 5-way range")

	assert.Panics(t, func() { s.Intn(0) }, "Intn must reject a non-positive bound")
}

func TestIntRangeBounds(t *testing.T) {
	s := New(3)
	for i := 0; i < 1000; i++ {
		v := s.IntRange(10, 14)
		assert.GreaterOrEqual(t, v, 10)
		assert.Less(t, v, 14)
	}
}

func TestBernoulliEdges(t *testing.T) {
	s := New(4)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Bernoulli(0), "p=0 never fires")
		assert.True(t, s.Bernoulli(1), "p=1 always fires")
	}

	hits := 0
	for i := 0; i < 10000; i++ {
		if s.Bernoulli(0.5) {
			hits++
		}
	}
	assert.InDelta(t, 5000, hits, 500, "p=0.5 should fire about half the time")
}

func TestChoice(t *testing.T) {
	s := New(5)

	_, err := s.Choice(nil)
	assert.Error(t, err, "empty weights must be rejected")

	_, err = s.Choice([]float64{1, -1})
	assert.Error(t, err, "negative weights must be rejected")

	_, err = s.Choice([]float64{0, 0})
	assert.Error(t, err, "all-zero weights must be rejected")

	for i := 0; i < 100; i++ {
		idx, err := s.Choice([]float64{0, 1, 0})
		require.NoError(t, err)
		assert.Equal(t, 1, idx, "all the mass sits on index 1")
	}

	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		idx, err := s.Choice([]float64{3, 1})
		require.NoError(t, err)
		counts[idx]++
	}
	assert.InDelta(t, 7500, counts[0], 500, "a 3:1 weighting should land on index 0 about 75% of the time")
}

func TestPerm(t *testing.T) {
	s := New(6)

	assert.Empty(t, s.Perm(0))
	assert.Equal(t, []int{0}, s.Perm(1))

	for i := 0; i < 100; i++ {
		perm := s.Perm(8)
		require.Len(t, perm, 8)
		seen := make(map[int]bool, 8)
		for _, v := range perm {
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, 8)
			seen[v] = true
		}
		require.Len(t, seen, 8, "a permutation visits every index exactly once")
	}
}
