package engine

import (
	"fmt"

	"github.com/roach88/natty/internal/command"
)

// EventKind distinguishes presses from releases.
type EventKind uint8

const (
	// EventPress reports a key or button going down.
	EventPress EventKind = iota + 1
	// EventRelease reports a key or button going up.
	EventRelease
)

func (k EventKind) String() string {
	switch k {
	case EventPress:
		return "press"
	case EventRelease:
		return "release"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is one physical input transition reported by an event source.
type Event struct {
	Kind    EventKind
	Trigger command.Input
}

// Press builds a press event.
func Press(trigger command.Input) Event {
	return Event{Kind: EventPress, Trigger: trigger}
}

// Release builds a release event.
func Release(trigger command.Input) Event {
	return Event{Kind: EventRelease, Trigger: trigger}
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Trigger)
}
