package testutil

import (
	"math/rand/v2"
	"sync"
)

// ScriptedRand returns predetermined values in order, cycling when the
// script runs out. Values outside the requested range are clamped so the
// engine's range invariant holds whatever the script says.
//
// An empty script always returns max.
type ScriptedRand struct {
	mu     sync.Mutex
	values []int
	idx    int
	calls  int
}

// NewScriptedRand creates a generator returning values in order.
func NewScriptedRand(values ...int) *ScriptedRand {
	return &ScriptedRand{values: values}
}

// IntRange implements engine.Rand.
func (r *ScriptedRand) IntRange(min, max int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if len(r.values) == 0 {
		return max
	}
	v := r.values[r.idx%len(r.values)]
	r.idx++
	return clamp(v, min, max)
}

// Calls returns how many draws were made.
func (r *ScriptedRand) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// SeededRand draws uniformly from a PCG generator with a fixed seed, so a
// test gets the same "random" sequence on every run.
type SeededRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand creates a generator from two seed words.
func NewSeededRand(seed1, seed2 uint64) *SeededRand {
	return &SeededRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// IntRange implements engine.Rand.
func (r *SeededRand) IntRange(min, max int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if max <= min {
		return min
	}
	return min + r.r.IntN(max-min+1)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
