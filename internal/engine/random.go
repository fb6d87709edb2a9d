package engine

import "math/rand/v2"

// Rand draws the next clicks-per-second value for a click-repeat command.
// IntRange must return a value in [min, max] inclusive.
type Rand interface {
	IntRange(min, max int) int
}

// SystemRand draws uniformly from the runtime's shared generator. It is
// safe for concurrent use.
type SystemRand struct{}

// IntRange returns a uniform integer in [min, max].
func (SystemRand) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}
