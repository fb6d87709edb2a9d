package harness

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
	"github.com/roach88/natty/internal/testutil"
)

// DefaultStart is the manual clock's start time when a scenario sets none.
const DefaultStart int64 = 1_000_000

// Harness drives one engine on a manual clock and records its trace.
type Harness struct {
	keys   *keymap.Keymap
	clock  *testutil.ManualClock
	sink   *testutil.RecordingSink
	engine *engine.Engine
	start  int64
	tick   int64

	mu    sync.Mutex
	trace []TraceEntry
}

// EventResolved implements engine.Observer.
func (h *Harness) EventResolved(tr engine.Transition, at int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trace = append(h.trace, TraceEntry{
		Type:    TraceEvent,
		At:      at - h.start,
		Trigger: tr.Event.Trigger.String(),
		Kind:    tr.Event.Kind.String(),
		Matched: tr.Matched,
		Active:  tr.Active,
	})
}

// Dispatched implements engine.Observer.
func (h *Harness) Dispatched(f engine.Firing, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := TraceEntry{
		Type:    TraceDispatch,
		At:      f.At - h.start,
		Trigger: f.Trigger.String(),
		Target:  f.Action.Target.String(),
		CPS:     f.CPS,
	}
	if err != nil {
		e.Error = err.Error()
	}
	h.trace = append(h.trace, e)
}

// New prepares a harness for the scenario. Binding errors are returned as
// command.ConfigErrors.
func New(s *Scenario) (*Harness, error) {
	keys := keymap.Default()
	table, err := command.Build(s.Commands, keys)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		keys:  keys,
		sink:  testutil.NewRecordingSink(),
		start: s.Start,
		tick:  s.TickMS,
	}
	if h.start == 0 {
		h.start = DefaultStart
	}
	if h.tick == 0 {
		h.tick = 1
	}
	h.clock = testutil.NewManualClock(h.start)

	for i, spec := range s.Fail {
		in, err := spec.Resolve(keys)
		if err != nil {
			return nil, fmt.Errorf("fail[%d]: %w", i, err)
		}
		h.sink.FailOn(in)
	}

	var rng engine.Rand = testutil.NewScriptedRand(s.Rand...)
	if len(s.Seed) == 2 {
		rng = testutil.NewSeededRand(s.Seed[0], s.Seed[1])
	}

	h.engine = engine.New(table, h.sink,
		engine.WithClock(h.clock),
		engine.WithRand(rng),
		engine.WithObserver(h),
	)
	return h, nil
}

// Run executes a scenario and evaluates its assertions.
func Run(s *Scenario) (*Result, error) {
	h, err := New(s)
	if err != nil {
		return nil, err
	}

	for i, step := range s.Steps {
		if err := h.Step(step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	result := h.Result()
	for _, msg := range EvaluateAssertions(result, s.Assertions, h.keys) {
		result.AddError(msg)
	}
	return result, nil
}

// Step applies one scripted step.
func (h *Harness) Step(step Step) error {
	switch {
	case step.Press != nil:
		in, err := step.Press.Resolve(h.keys)
		if err != nil {
			return err
		}
		h.engine.HandleEvent(engine.Press(in))
	case step.Release != nil:
		in, err := step.Release.Resolve(h.keys)
		if err != nil {
			return err
		}
		h.engine.HandleEvent(engine.Release(in))
	case step.Advance > 0:
		h.Advance(step.Advance)
	}
	return nil
}

// Advance moves the clock forward ms milliseconds, ticking every tick
// period and once more for any partial period at the end.
func (h *Harness) Advance(ms int64) {
	for ms > 0 {
		d := min(h.tick, ms)
		h.clock.Advance(d)
		ms -= d

		h.mu.Lock()
		mark := len(h.trace)
		h.mu.Unlock()

		h.engine.Tick()

		h.mu.Lock()
		tail := h.trace[mark:]
		sort.SliceStable(tail, func(i, j int) bool { return tail[i].Trigger < tail[j].Trigger })
		h.mu.Unlock()
	}
}

// Result snapshots the trace and command states so far.
func (h *Harness) Result() *Result {
	r := NewResult()

	h.mu.Lock()
	r.Trace = append(r.Trace, h.trace...)
	h.mu.Unlock()

	for _, c := range h.engine.Snapshot() {
		st := CommandState{
			Trigger: c.Trigger.String(),
			Active:  c.Active,
			Repeats: c.Action.Repeats(),
			NextCPS: c.NextCPS,
		}
		if c.LastFiredAt != 0 {
			st.LastFiredAt = c.LastFiredAt - h.start
		}
		r.Final = append(r.Final, st)
	}
	return r
}

// Sink returns the recording sink, for tests that inspect raw calls.
func (h *Harness) Sink() *testutil.RecordingSink {
	return h.sink
}
