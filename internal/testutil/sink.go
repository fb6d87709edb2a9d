package testutil

import (
	"errors"
	"sync"

	"github.com/roach88/natty/internal/command"
)

// ErrInjected is returned by RecordingSink for targets registered with
// FailOn.
var ErrInjected = errors.New("injected sink failure")

// SinkCall is one recorded sink operation.
type SinkCall struct {
	Op     string
	Target command.Input
}

// RecordingSink records every operation instead of producing output.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingSink struct {
	mu    sync.Mutex
	calls []SinkCall
	fail  map[command.Input]bool
}

// NewRecordingSink creates an empty sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{fail: make(map[command.Input]bool)}
}

// FailOn makes every later operation on target return ErrInjected. Failed
// operations are still recorded.
func (s *RecordingSink) FailOn(target command.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[target] = true
}

func (s *RecordingSink) record(op string, target command.Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, SinkCall{Op: op, Target: target})
	if s.fail[target] {
		return ErrInjected
	}
	return nil
}

// Press implements engine.Sink.
func (s *RecordingSink) Press(target command.Input) error { return s.record("press", target) }

// Release implements engine.Sink.
func (s *RecordingSink) Release(target command.Input) error { return s.record("release", target) }

// Click implements engine.Sink.
func (s *RecordingSink) Click(target command.Input) error { return s.record("click", target) }

// Calls returns a copy of all recorded operations.
func (s *RecordingSink) Calls() []SinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SinkCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns the number of recorded operations on target.
func (s *RecordingSink) Count(target command.Input) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Target == target {
			n++
		}
	}
	return n
}

// Reset forgets all recorded operations.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
