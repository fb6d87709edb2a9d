package engine_test

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
	"github.com/roach88/natty/internal/testutil"
)

// t0 is an arbitrary wall-clock start, far from the zero LastFiredAt.
const t0 int64 = 1_700_000_000_000

var (
	keyA    = command.KeyInput("a")
	keyZ    = command.KeyInput("z")
	btnLeft = command.ButtonInput(command.ButtonLeft)
)

func buildTable(t *testing.T, bindings ...command.Binding) *command.Table {
	t.Helper()
	table, err := command.Build(bindings, keymap.Default())
	require.NoError(t, err)
	return table
}

func holdLeftPress() command.Binding {
	return command.Binding{
		Listen: command.InputSpec{Type: "Button", Value: "Left"},
		Action: command.InputSpec{Type: "Button", Value: "Left"},
		Method: "Hold",
	}
}

func toggleAClick(min, max int) command.Binding {
	return command.Binding{
		Listen: command.InputSpec{Type: "Key", Value: "A"},
		Action: command.InputSpec{Type: "Button", Value: "Left"},
		Method: "Toggle",
		Range:  &command.Rate{Min: min, Max: max},
	}
}

func holdAClick(min, max int) command.Binding {
	b := toggleAClick(min, max)
	b.Method = "Hold"
	return b
}

type fixture struct {
	clock *testutil.ManualClock
	sink  *testutil.RecordingSink
	eng   *engine.Engine
}

func newFixture(t *testing.T, rng engine.Rand, bindings ...command.Binding) *fixture {
	t.Helper()
	f := &fixture{
		clock: testutil.NewManualClock(t0),
		sink:  testutil.NewRecordingSink(),
	}
	f.eng = engine.New(buildTable(t, bindings...), f.sink,
		engine.WithClock(f.clock),
		engine.WithRand(rng),
	)
	return f
}

// runTicks advances the clock one millisecond per tick and returns the
// timestamps of every firing.
func (f *fixture) runTicks(n int) []engine.Firing {
	var fired []engine.Firing
	for i := 0; i < n; i++ {
		f.clock.Advance(1)
		fired = append(fired, f.eng.Tick()...)
	}
	return fired
}

func TestScenarioHoldPressOnce(t *testing.T) {
	f := newFixture(t, testutil.NewScriptedRand(), holdLeftPress())

	f.eng.HandleEvent(engine.Press(btnLeft))
	fired := f.runTicks(1)
	require.Len(t, fired, 1, "press-once fires on the first tick after activation")
	assert.Equal(t, btnLeft, fired[0].Action.Target)
	assert.Zero(t, fired[0].CPS)

	assert.Empty(t, f.runTicks(500), "no refire while held")

	f.eng.HandleEvent(engine.Release(btnLeft))
	assert.Empty(t, f.runTicks(500), "nothing after release")
	assert.Equal(t, []testutil.SinkCall{{Op: "click", Target: btnLeft}}, f.sink.Calls())

	// A new activation fires once more.
	f.eng.HandleEvent(engine.Press(btnLeft))
	assert.Len(t, f.runTicks(100), 1)
}

func TestScenarioToggleClickRepeat(t *testing.T) {
	f := newFixture(t, testutil.NewSeededRand(7, 11), toggleAClick(5, 10))

	tr := f.eng.HandleEvent(engine.Release(keyA))
	require.True(t, tr.Matched)
	require.True(t, tr.Active, "first release toggles on")

	var fired []engine.Firing
	for i := int64(0); i < 2000; i++ {
		f.clock.Set(t0 + i)
		fired = append(fired, f.eng.Tick()...)
	}

	require.NotEmpty(t, fired)
	assert.Equal(t, t0, fired[0].At, "first firing is immediate")
	assert.GreaterOrEqual(t, len(fired), 10)
	assert.LessOrEqual(t, len(fired), 20)

	for i := 1; i < len(fired); i++ {
		gap := fired[i].At - fired[i-1].At
		assert.GreaterOrEqual(t, gap, int64(100), "gap %d", i)
		assert.LessOrEqual(t, gap, int64(200+1), "gap %d (one tick of granularity)", i)
	}
	assert.Equal(t, len(fired), f.sink.Count(btnLeft))
}

func TestScenarioUnconfiguredTrigger(t *testing.T) {
	f := newFixture(t, testutil.NewScriptedRand(), holdLeftPress(), toggleAClick(5, 10))
	before := f.eng.Snapshot()

	for _, ev := range []engine.Event{engine.Press(keyZ), engine.Release(keyZ)} {
		tr := f.eng.HandleEvent(ev)
		assert.False(t, tr.Matched)
		assert.False(t, tr.Changed)
	}

	assert.Equal(t, before, f.eng.Snapshot(), "no table mutation")
	assert.Empty(t, f.runTicks(1000))
	assert.Empty(t, f.sink.Calls())
}

func TestHoldTracksLastEvent(t *testing.T) {
	table := buildTable(t, holdAClick(1, 2))
	rng := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 1000; i++ {
		ev := engine.Release(keyA)
		if rng.IntN(2) == 0 {
			ev = engine.Press(keyA)
		}
		tr := engine.Resolve(table, ev)
		assert.Equal(t, ev.Kind == engine.EventPress, tr.Active, "step %d", i)
	}
}

func TestToggleFlipsOnReleaseOnly(t *testing.T) {
	table := buildTable(t, toggleAClick(1, 2))
	rng := rand.New(rand.NewPCG(5, 6))

	releases := 0
	for i := 0; i < 1000; i++ {
		ev := engine.Press(keyA)
		if rng.IntN(2) == 0 {
			ev = engine.Release(keyA)
			releases++
		}
		tr := engine.Resolve(table, ev)
		assert.Equal(t, releases%2 == 1, tr.Active, "step %d", i)
		if ev.Kind == engine.EventPress {
			assert.False(t, tr.Changed, "press never toggles")
		}
	}
}

func TestRepeatedPressDoesNotRefire(t *testing.T) {
	f := newFixture(t, testutil.NewScriptedRand(), holdLeftPress())

	f.eng.HandleEvent(engine.Press(btnLeft))
	f.runTicks(1)
	// OS auto-repeat presses while held.
	for i := 0; i < 5; i++ {
		tr := f.eng.HandleEvent(engine.Press(btnLeft))
		assert.False(t, tr.Changed)
		f.runTicks(10)
	}
	assert.Equal(t, 1, f.sink.Count(btnLeft))
}

func TestRateBound(t *testing.T) {
	for name, rng := range map[string]engine.Rand{
		"system": engine.SystemRand{},
		"seeded": testutil.NewSeededRand(1, 2),
	} {
		t.Run(name, func(t *testing.T) {
			table := buildTable(t, holdAClick(3, 17))
			engine.Resolve(table, engine.Press(keyA))
			c, ok := table.Get(keyA)
			require.True(t, ok)

			seen := map[int]bool{}
			now := t0
			for i := 0; i < 10_000; i++ {
				now += 1000
				require.Len(t, engine.Sweep(table, now, rng), 1)
				require.True(t, c.Action.Rate.Contains(c.NextCPS), "sample %d = %d", i, c.NextCPS)
				seen[c.NextCPS] = true
			}
			assert.True(t, seen[3], "min is reachable")
			assert.True(t, seen[17], "max is reachable")
		})
	}
}

func TestImmediateFirstFire(t *testing.T) {
	table := buildTable(t, toggleAClick(1, 1))
	engine.Resolve(table, engine.Release(keyA))

	// 1 cps means a 1000ms interval; any now > 1000 is due against epoch 0.
	assert.Empty(t, engine.Sweep(table, 1000, testutil.NewScriptedRand()))
	assert.Len(t, engine.Sweep(table, 1001, testutil.NewScriptedRand()), 1)
}

func TestNoDoubleFireWithinInterval(t *testing.T) {
	f := newFixture(t, testutil.NewSeededRand(9, 9), holdAClick(20, 60))
	f.eng.HandleEvent(engine.Press(keyA))

	fired := f.runTicks(5000)
	require.Greater(t, len(fired), 50)

	for i := 1; i < len(fired); i++ {
		gap := fired[i].At - fired[i-1].At
		interval := int64(1000.0/float64(fired[i].CPS) + 0.5)
		assert.Greater(t, gap, interval, "firing %d at cps %d", i, fired[i].CPS)
	}
}

func TestIntervalUsesScheduledRate(t *testing.T) {
	// Script 4 cps after the first firing: the next one needs > 250ms.
	f := newFixture(t, testutil.NewScriptedRand(4), holdAClick(2, 8))
	f.eng.HandleEvent(engine.Press(keyA))

	fired := f.runTicks(1)
	require.Len(t, fired, 1)
	assert.Equal(t, 2, fired[0].CPS, "first interval measured at min cps")

	assert.Empty(t, f.runTicks(250))
	assert.Len(t, f.runTicks(1), 1)
}

func TestReleaseStopsClicking(t *testing.T) {
	f := newFixture(t, testutil.NewScriptedRand(10), holdAClick(10, 10))
	f.eng.HandleEvent(engine.Press(keyA))
	f.runTicks(350)
	n := f.sink.Count(btnLeft)
	require.Greater(t, n, 2)

	f.eng.HandleEvent(engine.Release(keyA))
	f.runTicks(1000)
	assert.Equal(t, n, f.sink.Count(btnLeft))
}

func TestDispatchFailureIsIsolated(t *testing.T) {
	clock := testutil.NewManualClock(t0)
	sink := testutil.NewRecordingSink()
	rec := &recorder{}
	eng := engine.New(buildTable(t, holdLeftPress(), toggleAClick(10, 10)), sink,
		engine.WithClock(clock),
		engine.WithRand(testutil.NewScriptedRand()),
		engine.WithObserver(rec),
	)
	sink.FailOn(btnLeft)

	eng.HandleEvent(engine.Press(btnLeft))
	eng.HandleEvent(engine.Release(keyA))

	var fired []engine.Firing
	for i := 0; i < 500; i++ {
		clock.Advance(1)
		fired = append(fired, eng.Tick()...)
	}

	// Both commands target the failing button; every attempt is still made.
	assert.Greater(t, len(fired), 2)
	assert.Equal(t, len(fired), sink.Count(btnLeft))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.errs, len(fired))
	for _, err := range rec.errs {
		require.Error(t, err)
		assert.True(t, engine.IsDispatchError(err))
		assert.ErrorIs(t, err, testutil.ErrInjected)
	}
	assert.Len(t, rec.transitions, 2)
}

func TestDispatchFailureDoesNotAffectOtherTargets(t *testing.T) {
	f := newFixture(t, testutil.NewScriptedRand(), holdLeftPress(), command.Binding{
		Listen: command.InputSpec{Type: "Key", Value: "z"},
		Action: command.InputSpec{Type: "Key", Value: "b"},
		Method: "Hold",
		Range:  &command.Rate{Min: 10, Max: 10},
	})
	f.sink.FailOn(btnLeft)

	f.eng.HandleEvent(engine.Press(btnLeft))
	f.eng.HandleEvent(engine.Press(keyZ))
	f.runTicks(1000)

	assert.Equal(t, 1, f.sink.Count(btnLeft))
	assert.GreaterOrEqual(t, f.sink.Count(command.KeyInput("b")), 9)
}

type recorder struct {
	mu          sync.Mutex
	transitions []engine.Transition
	errs        []error
}

func (r *recorder) EventResolved(tr engine.Transition, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, tr)
}

func (r *recorder) Dispatched(_ engine.Firing, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestRunProcessesEventsAndTicks(t *testing.T) {
	sink := testutil.NewRecordingSink()
	eng := engine.New(buildTable(t, holdLeftPress()), sink, engine.WithTick(time.Millisecond))

	events := make(chan engine.Event)
	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background(), events) }()

	events <- engine.Press(btnLeft)
	require.Eventually(t, func() bool { return sink.Count(btnLeft) == 1 }, 2*time.Second, time.Millisecond)

	events <- engine.Release(btnLeft)
	close(events)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, engine.ErrSourceClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the source closed")
	}

	snap := eng.Snapshot()
	require.Len(t, snap, 1)
	assert.False(t, snap[0].Active, "release was processed before shutdown")
	assert.False(t, eng.Enqueue(engine.Press(btnLeft)), "inbox is closed after Run")
}

func TestRunStopsOnCancel(t *testing.T) {
	eng := engine.New(buildTable(t, holdLeftPress()), testutil.NewRecordingSink(), engine.WithTick(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx, make(chan engine.Event)) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentEventsAndTicks(t *testing.T) {
	sink := testutil.NewRecordingSink()
	eng := engine.New(buildTable(t, holdLeftPress(), toggleAClick(50, 100)), sink)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			eng.HandleEvent(engine.Press(btnLeft))
			eng.HandleEvent(engine.Release(btnLeft))
			eng.HandleEvent(engine.Release(keyA))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			eng.Tick()
		}
	}()
	wg.Wait()

	for _, c := range eng.Snapshot() {
		if c.Action.Repeats() {
			assert.True(t, c.Action.Rate.Contains(c.NextCPS))
		}
	}
}
