// Package rng provides the seeded random-number plumbing the generator
// needs: uniform integer, real, and boolean draws from a single
// reproducible source. It deliberately wraps nothing but math/rand — no
// repo in the retrieval pack reaches for a third-party PRNG for this kind
// of narrow, three-method need (see DESIGN.md).
package rng

import "math/rand"

// Source is a seeded, reproducible draw source. Two Sources created with
// the same seed produce identical sequences, which is what makes the
// generator's output deterministic for a given (seed, num_events) pair.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically from seed.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// IntN returns a uniform integer in [0, n). Panics if n <= 0, same as the
// underlying math/rand.
func (s *Source) IntN(n int) int {
	return s.r.Intn(n)
}

// Float64 returns a uniform real in [0.0, 1.0).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Bool returns a uniform coin flip.
func (s *Source) Bool() bool {
	return s.r.Intn(2) == 0
}

// Range returns a uniform integer in [lo, hi].
func (s *Source) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.IntN(hi-lo+1)
}

// Price returns a uniform real price in [lo, hi], rounded to the given
// number of decimal places (tick rounding happens here rather than in the
// core — the core never rounds prices, per spec.md §3). A negative decimals
// disables rounding, the same convention internal/feed's tick-decimals
// option uses.
func (s *Source) Price(lo, hi float64, decimals int) float64 {
	if hi <= lo {
		return lo
	}
	raw := lo + s.Float64()*(hi-lo)
	if decimals < 0 {
		return raw
	}
	scale := 1.0
	for i := 0; i < decimals; i++ {
		scale *= 10
	}
	return float64(int64(raw*scale+0.5)) / scale
}
