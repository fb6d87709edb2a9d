package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/natty/internal/command"
)

// DefaultTick is the scheduler period used when WithTick is not given.
const DefaultTick = 5 * time.Millisecond

// Observer is notified of engine activity. Calls happen outside the table
// lock, from the goroutine that produced the activity, and must not block
// for long.
type Observer interface {
	EventResolved(tr Transition, at int64)
	Dispatched(f Firing, err error)
}

// Engine owns the command table and the lock that serializes the event
// actor and the scheduler actor.
//
// Thread-safety model:
//   - HandleEvent, Tick, Enqueue and Snapshot: safe from any goroutine
//   - Run: call at most once
type Engine struct {
	mu    sync.Mutex
	table *command.Table

	sink     Sink
	clock    Clock
	rng      Rand
	tick     time.Duration
	observer Observer
	inbox    *eventQueue
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithRand replaces the source of randomized click rates.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithTick sets the scheduler period. Non-positive values are ignored.
func WithTick(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tick = d
		}
	}
}

// WithObserver registers an observer for resolved events and dispatches.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New creates an Engine over table, dispatching to sink.
//
// The engine takes ownership of table; callers must not touch it
// afterwards except through the engine.
func New(table *command.Table, sink Sink, opts ...Option) *Engine {
	e := &Engine{
		table: table,
		sink:  sink,
		clock: NewSystemClock(),
		rng:   SystemRand{},
		tick:  DefaultTick,
		inbox: newEventQueue(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// HandleEvent resolves one event against the table. This is the event
// actor's unit of work; no output is dispatched here.
func (e *Engine) HandleEvent(ev Event) Transition {
	e.mu.Lock()
	tr := Resolve(e.table, ev)
	e.mu.Unlock()

	switch {
	case !tr.Matched:
		slog.Debug("ignoring unbound trigger",
			"event", ev.Kind.String(),
			"trigger", ev.Trigger.String(),
		)
	case tr.Changed:
		slog.Debug("command state changed",
			"trigger", ev.Trigger.String(),
			"event", ev.Kind.String(),
			"active", tr.Active,
		)
	}

	if e.observer != nil {
		e.observer.EventResolved(tr, e.clock.NowMillis())
	}
	return tr
}

// Tick runs one scheduler sweep at the clock's current time and dispatches
// every firing it decides. Dispatch failures are logged and do not stop the
// remaining firings.
func (e *Engine) Tick() []Firing {
	now := e.clock.NowMillis()

	e.mu.Lock()
	due := Sweep(e.table, now, e.rng)
	e.mu.Unlock()

	for _, f := range due {
		err := dispatch(e.sink, f)
		if err != nil {
			slog.Error("dispatch failed",
				"trigger", f.Trigger.String(),
				"target", f.Action.Target.String(),
				"error", err,
			)
		}
		if e.observer != nil {
			e.observer.Dispatched(f, err)
		}
	}

	return due
}

// Enqueue hands an event to the event actor started by Run.
// Returns false once the engine has stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.inbox.Enqueue(ev)
}

// Snapshot returns copies of all commands, sorted by trigger.
func (e *Engine) Snapshot() []command.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.Snapshot()
}

// Run starts both actors and blocks until ctx is cancelled or events is
// closed. Events are forwarded into the inbox so the source never waits on
// the table lock.
//
// Returns ctx.Err() on cancellation and ErrSourceClosed when the source
// ends.
func (e *Engine) Run(ctx context.Context, events <-chan Event) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slog.Info("engine starting", "commands", e.table.Len(), "tick", e.tick)

	var (
		wg     sync.WaitGroup
		closed atomic.Bool
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		e.pump(runCtx, events)
	}()

	go func() {
		defer wg.Done()
		if e.drain(runCtx) {
			closed.Store(true)
			cancel()
		}
	}()

	e.schedule(runCtx)
	wg.Wait()

	// Sources close their channel on cancellation too; cancellation wins.
	if closed.Load() && ctx.Err() == nil {
		slog.Info("engine stopping: event source closed")
		return ErrSourceClosed
	}
	slog.Info("engine stopping: context cancelled")
	return ctx.Err()
}

// pump forwards source events into the inbox and closes the inbox when the
// source ends.
func (e *Engine) pump(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				e.inbox.Close()
				return
			}
			e.inbox.Enqueue(ev)
		}
	}
}

// drain is the event actor loop. It reports true when the inbox was closed
// and fully drained, false on cancellation.
func (e *Engine) drain(ctx context.Context) bool {
	for {
		if ev, ok := e.inbox.TryDequeue(); ok {
			e.HandleEvent(ev)
			continue
		}

		select {
		case <-ctx.Done():
			e.inbox.Close()
			return false
		case <-e.inbox.Wait():
			if e.inbox.Closed() && e.inbox.Len() == 0 {
				return true
			}
		}
	}
}

// schedule is the scheduler actor loop.
func (e *Engine) schedule(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}
