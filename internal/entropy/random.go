// Package entropy provides deterministic seeded randomness for the simulation.
// Every stochastic branch draws from a named stream so that a fixed world seed
// replays the same history tick for tick.
package entropy

import (
	"hash/fnv"
	"math/rand"
)

// Source is a deterministic stream of pseudo-random numbers.
// Not safe for concurrent use; the simulation thread owns all streams.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// New creates a root source from a world seed.
func New(seed int64) *Source {
	return &Source{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Fork derives an independent stream for a named concern. Streams forked with
// the same name from the same seed are identical, so adding a new consumer
// never perturbs existing ones.
func (s *Source) Fork(name string) *Source {
	h := fnv.New64a()
	h.Write([]byte(name))
	derived := s.seed ^ int64(h.Sum64())
	return &Source{seed: derived, rng: rand.New(rand.NewSource(derived))}
}

// Float returns a random float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Range returns a random float64 in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Intn returns a random int in [0, n).
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Seed returns the seed this stream was created with.
func (s *Source) Seed() int64 {
	return s.seed
}
