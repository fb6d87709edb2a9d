package engine

import (
	"fmt"

	"github.com/roach88/natty/internal/command"
)

// Firing is one dispatch decided by a sweep.
type Firing struct {
	Trigger command.Input
	Action  command.Action

	// At is the sweep timestamp, which is also the command's new
	// LastFiredAt.
	At int64

	// CPS is the rate the elapsed interval was measured against; 0 for
	// press-once actions.
	CPS int
}

func (f Firing) String() string {
	return fmt.Sprintf("%d %s -> %s", f.At, f.Trigger, f.Action.Target)
}

// Sweep decides which active commands are due at now and advances their
// timing state as if the returned firings had been dispatched.
//
// Firings come back in table iteration order, which is unspecified.
//
// The caller must hold the table lock.
func Sweep(t *command.Table, now int64, rng Rand) []Firing {
	var due []Firing

	for c := range t.All() {
		if !c.Active {
			continue
		}

		switch c.Action.Kind {
		case command.ActionKeyPress, command.ActionButtonPress:
			if c.Fired {
				continue
			}
			c.Fired = true
			c.LastFiredAt = now
			due = append(due, Firing{Trigger: c.Trigger, Action: c.Action, At: now})

		case command.ActionKeyClick, command.ActionButtonClick:
			if now-c.LastFiredAt <= c.IntervalMillis() {
				continue
			}
			due = append(due, Firing{Trigger: c.Trigger, Action: c.Action, At: now, CPS: c.NextCPS})
			c.NextCPS = rng.IntRange(c.Action.Rate.Min, c.Action.Rate.Max)
			c.LastFiredAt = now
		}
	}

	return due
}
