// Package rng implements the seeded deterministic generator used for plan
// synthesis. It is intentionally not crypto-grade and not math/rand: the
// recurrence is fixed forever so that a seed string reproduces the exact
// same plan across versions and platforms.
package rng

import (
	"math"
	"time"
)

// LCG constants. Changing any of these breaks seed compatibility with every
// previously shared seed, so they are frozen.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Source is a deterministic pseudo-random source backed by a linear
// congruential recurrence. It is not safe for concurrent use; every
// consumer owns its own Source.
type Source struct {
	state int64
}

// New returns a Source seeded from the given string. An empty seed falls
// back to wall-clock entropy and is therefore not reproducible.
func New(seed string) *Source {
	if seed == "" {
		return &Source{state: time.Now().UnixNano() % lcgModulus}
	}
	return &Source{state: HashSeed(seed)}
}

// HashSeed maps a seed string to a non-negative 32-bit integer using a
// polynomial rolling hash (base 31). The result is clamped non-negative
// rather than masked so the mapping matches the documented contract.
func HashSeed(seed string) int64 {
	var h int32
	for i := 0; i < len(seed); i++ {
		h = h*31 + int32(seed[i])
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}

// Float returns the next value in [0, 1).
func (s *Source) Float() float64 {
	s.state = (s.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(s.state) / lcgModulus
}

// IntN returns a uniformly distributed integer in [min, max). If the range
// is empty or inverted it returns min.
func (s *Source) IntN(min, max int) int {
	if max <= min {
		return min
	}
	return int(s.Float()*float64(max-min)) + min
}

// Gaussian returns a normally distributed value with the given mean and
// standard deviation, via the Box-Muller transform. Zero draws are rejected
// to avoid log(0).
func (s *Source) Gaussian(mean, stdDev float64) float64 {
	u1 := s.Float()
	for u1 == 0 {
		u1 = s.Float()
	}
	u2 := s.Float()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + z*stdDev
}
