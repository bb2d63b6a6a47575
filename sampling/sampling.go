// Package sampling provides the random source behind parameter sampling and
// container child selection. The source is an explicit dependency: transforms
// default to the process-wide Global instance but accept an injected one, and
// re-seeding a source makes every subsequent draw repeatable.
package sampling

import (
	"time"

	rng "github.com/leesper/go_rng"
	"github.com/pkg/errors"
)

// Source draws uniform, bounded-integer, Bernoulli, weighted-choice and
// permutation values from a seedable generator. It is not safe for concurrent
// use; share one per goroutine or inject distinct sources.
type Source struct {
	uni *rng.UniformGenerator
}

// New returns a source seeded with the given value.
func New(seed int64) *Source {
	return &Source{uni: rng.NewUniformGenerator(seed)}
}

// Global is the default process-wide source used by transforms constructed
// without an explicit one.
var Global = New(time.Now().UnixNano())

// Seed resets the source so the draw sequence restarts from the given seed.
func (s *Source) Seed(seed int64) {
	s.uni = rng.NewUniformGenerator(seed)
}

// Float64 draws a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	return s.uni.Float64()
}

// Float64Range draws a uniform value in [lo, hi).
func (s *Source) Float64Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return s.uni.Float64Range(lo, hi)
}

// Intn draws a uniform integer in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic(errors.Errorf("sampling: Intn called with n = %d", n))
	}
	return int(s.uni.Int64n(int64(n)))
}

// IntRange draws a uniform integer in [lo, hi). hi must exceed lo.
func (s *Source) IntRange(lo, hi int) int {
	return lo + s.Intn(hi-lo)
}

// Bernoulli draws true with probability p.
func (s *Source) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.uni.Float64() < p
}

// Choice draws an index with probability proportional to its weight. The
// weights must be non-negative with a positive sum.
func (s *Source) Choice(weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, errors.New("sampling: choice needs at least one weight")
	}
	var total float64
	for i, w := range weights {
		if w < 0 {
			return 0, errors.Errorf("sampling: weight %d is negative", i)
		}
		total += w
	}
	if total <= 0 {
		return 0, errors.New("sampling: weights must have a positive sum")
	}
	draw := s.uni.Float64() * total
	for i, w := range weights {
		draw -= w
		if draw < 0 {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

// Perm draws a uniformly random permutation of [0, n).
func (s *Source) Perm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
