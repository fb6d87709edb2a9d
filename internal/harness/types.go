package harness

import (
	"fmt"
	"strings"
)

// Trace entry types.
const (
	TraceEvent    = "event"
	TraceDispatch = "dispatch"
)

// TraceEntry is one resolved event or one dispatch.
type TraceEntry struct {
	Type string `json:"type"`

	// At is milliseconds since the scenario started.
	At int64 `json:"at"`

	// Trigger is the event's input, or the command that fired.
	Trigger string `json:"trigger"`

	// Event fields.
	Kind    string `json:"kind,omitempty"`
	Matched bool   `json:"matched,omitempty"`
	Active  bool   `json:"active,omitempty"`

	// Dispatch fields.
	Target string `json:"target,omitempty"`
	CPS    int    `json:"cps,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (e TraceEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%d ", e.At)

	switch e.Type {
	case TraceEvent:
		fmt.Fprintf(&b, "%s %s", e.Kind, e.Trigger)
		if e.Matched {
			fmt.Fprintf(&b, " active=%t", e.Active)
		} else {
			b.WriteString(" unbound")
		}
	case TraceDispatch:
		fmt.Fprintf(&b, "click %s -> %s", e.Trigger, e.Target)
		if e.CPS > 0 {
			fmt.Fprintf(&b, " cps=%d", e.CPS)
		}
		if e.Error != "" {
			fmt.Fprintf(&b, " error=%q", e.Error)
		}
	}
	return b.String()
}

// CommandState is a command's state at the end of a run.
type CommandState struct {
	Trigger     string `json:"trigger"`
	Active      bool   `json:"active"`
	Repeats     bool   `json:"repeats"`
	NextCPS     int    `json:"next_cps,omitempty"`
	LastFiredAt int64  `json:"last_fired_at,omitempty"` // relative, 0 if never fired
}

func (s CommandState) String() string {
	if s.Repeats {
		return fmt.Sprintf("final %s active=%t next_cps=%d", s.Trigger, s.Active, s.NextCPS)
	}
	return fmt.Sprintf("final %s active=%t", s.Trigger, s.Active)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every event and dispatch in order.
	Trace []TraceEntry `json:"trace"`

	// Final holds each command's end state, sorted by trigger.
	Final []CommandState `json:"final"`

	// Errors holds assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Dispatches returns the dispatch entries of the trace.
func (r *Result) Dispatches() []TraceEntry {
	var out []TraceEntry
	for _, e := range r.Trace {
		if e.Type == TraceDispatch {
			out = append(out, e)
		}
	}
	return out
}
