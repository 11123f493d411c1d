// Package entropy provides the shared random source for stochastic
// simulation decisions. Seeded, so a run is reproducible from its seed.
package entropy

import "math/rand"

// Source wraps a seeded PRNG with the helpers the simulation uses.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source from a seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float returns a random float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Intn returns a random int in [0, n). n must be > 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Chance rolls once against probability p (clamped to [0, 1]).
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Range returns a random float64 in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Pick returns a random index weighted by the given non-negative weights.
// Returns 0 when all weights are zero.
func (s *Source) Pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	roll := s.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}
