package journal

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/natty/internal/engine"
)

// DefaultBuffer is the number of records a Recorder holds before it starts
// dropping.
const DefaultBuffer = 1024

var _ engine.Observer = (*Recorder)(nil)

// record is either an event or a firing.
type record struct {
	event  *EventRecord
	firing *FiringRecord
}

// Recorder writes engine activity for one session. Observer callbacks
// never block: each hands its record to the writer goroutine or drops it.
//
// Thread-safety: EventResolved and Dispatched are safe for concurrent use.
// Close must be called once, after the engine has stopped.
type Recorder struct {
	j         *Journal
	sessionID string

	seq     atomic.Int64
	dropped atomic.Int64

	records chan record
	done    chan struct{}

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// NewRecorder starts a writer for sessionID with the given buffer size.
// A non-positive buffer selects DefaultBuffer.
func NewRecorder(j *Journal, sessionID string, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	r := &Recorder{
		j:         j,
		sessionID: sessionID,
		records:   make(chan record, buffer),
		done:      make(chan struct{}),
	}
	go r.write()
	return r
}

// SessionID returns the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// EventResolved implements engine.Observer.
func (r *Recorder) EventResolved(tr engine.Transition, at int64) {
	r.enqueue(record{event: &EventRecord{
		SessionID: r.sessionID,
		Seq:       r.seq.Add(1),
		At:        at,
		Kind:      tr.Event.Kind.String(),
		Trigger:   tr.Event.Trigger.String(),
		Matched:   tr.Matched,
		Changed:   tr.Changed,
		Active:    tr.Active,
	}})
}

// Dispatched implements engine.Observer.
func (r *Recorder) Dispatched(f engine.Firing, err error) {
	fr := &FiringRecord{
		SessionID: r.sessionID,
		Seq:       r.seq.Add(1),
		At:        f.At,
		Trigger:   f.Trigger.String(),
		Action:    f.Action.Kind.String(),
		Target:    f.Action.Target.String(),
		CPS:       f.CPS,
	}
	if err != nil {
		fr.Error = err.Error()
	}
	r.enqueue(record{firing: fr})
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.records <- rec:
	default:
		if n := r.dropped.Add(1); n == 1 || n%1000 == 0 {
			slog.Warn("journal buffer full, dropping records",
				"session", r.sessionID,
				"dropped", n,
			)
		}
	}
}

func (r *Recorder) write() {
	defer close(r.done)

	ctx := context.Background()
	for rec := range r.records {
		var err error
		switch {
		case rec.event != nil:
			err = r.j.WriteEvent(ctx, *rec.event)
		case rec.firing != nil:
			err = r.j.WriteFiring(ctx, *rec.firing)
		}
		if err != nil {
			slog.Error("journal write failed", "session", r.sessionID, "error", err)
			r.errMu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.errMu.Unlock()
		}
	}
}

// Dropped returns how many records were discarded because the buffer was
// full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close flushes buffered records and stops the writer. It returns the
// first write error, if any.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.records)
	})
	<-r.done

	if n := r.Dropped(); n > 0 {
		slog.Warn("journal dropped records", "session", r.sessionID, "dropped", n)
	}

	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}
