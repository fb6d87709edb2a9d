package command

import (
	"fmt"
	"math"
	"strings"
)

// Method is the activation policy of a command.
type Method uint8

const (
	// MethodHold keeps the command active exactly while the trigger is down.
	MethodHold Method = iota + 1
	// MethodToggle flips the command on every trigger release.
	MethodToggle
)

func (m Method) String() string {
	switch m {
	case MethodHold:
		return "Hold"
	case MethodToggle:
		return "Toggle"
	default:
		return fmt.Sprintf("Method(%d)", m)
	}
}

// ParseMethod accepts "Hold" or "Toggle" (case-insensitive).
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hold":
		return MethodHold, true
	case "toggle":
		return MethodToggle, true
	default:
		return 0, false
	}
}

// Command is one row of the table: the static binding plus its live state.
type Command struct {
	Trigger Input
	Action  Action
	Method  Method

	// Active is written only by the trigger resolver.
	Active bool

	// LastFiredAt is the millisecond timestamp of the latest dispatch, 0
	// before the first one.
	LastFiredAt int64

	// NextCPS is the rate scheduled for the upcoming interval. It is 0 for
	// press-once actions and always inside Action.Rate otherwise.
	NextCPS int

	// Fired latches a press-once action after its single dispatch and is
	// cleared on the next inactive→active transition.
	Fired bool
}

func newCommand(trigger Input, action Action, method Method) *Command {
	c := &Command{
		Trigger: trigger,
		Action:  action,
		Method:  method,
	}
	if action.Repeats() {
		// Seeding with the minimum makes the first interval the shortest.
		c.NextCPS = action.Rate.Min
	}
	return c
}

// SetActive updates the activation flag and reports whether it changed.
// An inactive→active transition re-arms the press-once latch.
func (c *Command) SetActive(active bool) bool {
	if c.Active == active {
		return false
	}
	c.Active = active
	if active {
		c.Fired = false
	}
	return true
}

// IntervalMillis is round(1000 / NextCPS), or 0 for press-once actions.
func (c *Command) IntervalMillis() int64 {
	if c.NextCPS <= 0 {
		return 0
	}
	return int64(math.Round(1000 / float64(c.NextCPS)))
}

func (c *Command) String() string {
	return fmt.Sprintf("%s -> %s [%s]", c.Trigger, c.Action, c.Method)
}
