package engine

import "github.com/roach88/natty/internal/command"

// Transition is the effect of resolving one event against the table.
type Transition struct {
	Event Event

	// Matched is false when no command is bound to the event's trigger.
	Matched bool

	// Changed reports whether the command's Active flag flipped.
	Changed bool

	// Active is the command's Active flag after the event.
	Active bool
}

// Resolve applies one event to the table.
//
// Hold commands follow the physical state of the trigger. Toggle commands
// flip on release only, so OS auto-repeat presses while a key is held can
// never toggle twice. Unknown triggers leave the table untouched.
//
// The caller must hold the table lock.
func Resolve(t *command.Table, ev Event) Transition {
	tr := Transition{Event: ev}

	c, ok := t.Get(ev.Trigger)
	if !ok {
		return tr
	}
	tr.Matched = true

	switch ev.Kind {
	case EventPress:
		switch c.Method {
		case command.MethodHold:
			tr.Changed = c.SetActive(true)
		case command.MethodToggle:
			// Only releases drive toggles.
		}
	case EventRelease:
		switch c.Method {
		case command.MethodHold:
			tr.Changed = c.SetActive(false)
		case command.MethodToggle:
			tr.Changed = c.SetActive(!c.Active)
		}
	}

	tr.Active = c.Active
	return tr
}
