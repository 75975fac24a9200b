// Package random provides the seeded uniform draws used by every round of the
// simulation.
//
// All simulation randomness flows through a single Source so that a session
// seeded with the same value replays identically. Degenerate ranges
// (min == max) return min without consuming the generator.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source wraps a math/rand generator with inclusive-range helpers.
//
// Not safe for concurrent use; the simulation owns exactly one Source and
// only touches it while holding the round lock.
type Source struct {
	rng *rand.Rand
}

// New creates a Source seeded with seed.
func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Int returns a uniform integer in [min, max]. Inverted bounds are swapped.
func (s *Source) Int(min, max int) int {
	if min == max {
		return min
	}
	if min > max {
		min, max = max, min
	}
	return s.rng.Intn(max-min+1) + min
}

// Float returns a uniform float in [min, max). Inverted bounds are swapped.
func (s *Source) Float(min, max float64) float64 {
	if min == max {
		return min
	}
	if min > max {
		min, max = max, min
	}
	return min + (max-min)*s.rng.Float64()
}

// Index returns a uniform index in [0, n). n must be positive.
func (s *Source) Index(n int) int {
	return s.Int(0, n-1)
}

// Shuffle permutes n elements in place via swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}
