package command

import "fmt"

// ActionKind tags the four action variants. Code that switches on it is
// expected to handle every variant.
type ActionKind uint8

const (
	// ActionKeyPress fires a key once per activation.
	ActionKeyPress ActionKind = iota + 1
	// ActionKeyClick clicks a key repeatedly at a randomized rate.
	ActionKeyClick
	// ActionButtonPress fires a mouse button once per activation.
	ActionButtonPress
	// ActionButtonClick clicks a mouse button repeatedly at a randomized rate.
	ActionButtonClick
)

func (k ActionKind) String() string {
	switch k {
	case ActionKeyPress:
		return "key-press"
	case ActionKeyClick:
		return "key-click"
	case ActionButtonPress:
		return "button-press"
	case ActionButtonClick:
		return "button-click"
	default:
		return fmt.Sprintf("ActionKind(%d)", k)
	}
}

// Rate is an inclusive clicks-per-second range.
type Rate struct {
	Min int `json:"min" yaml:"min" toml:"min"`
	Max int `json:"max" yaml:"max" toml:"max"`
}

// Valid reports whether 0 < Min <= Max.
func (r Rate) Valid() bool {
	return r.Min > 0 && r.Min <= r.Max
}

// Contains reports whether cps lies within the range.
func (r Rate) Contains(cps int) bool {
	return cps >= r.Min && cps <= r.Max
}

func (r Rate) String() string {
	return fmt.Sprintf("%d-%d cps", r.Min, r.Max)
}

// Action is the synthetic output bound to a trigger.
//
// Rate is meaningful only for the click variants.
type Action struct {
	Kind   ActionKind
	Target Input
	Rate   Rate
}

// PressAction builds the press-once variant for the target.
func PressAction(target Input) Action {
	kind := ActionKeyPress
	if target.IsButton() {
		kind = ActionButtonPress
	}
	return Action{Kind: kind, Target: target}
}

// ClickAction builds the click-repeat variant for the target.
func ClickAction(target Input, rate Rate) Action {
	kind := ActionKeyClick
	if target.IsButton() {
		kind = ActionButtonClick
	}
	return Action{Kind: kind, Target: target, Rate: rate}
}

// Repeats reports whether the action is a click-repeat variant.
func (a Action) Repeats() bool {
	switch a.Kind {
	case ActionKeyClick, ActionButtonClick:
		return true
	case ActionKeyPress, ActionButtonPress:
		return false
	default:
		return false
	}
}

func (a Action) String() string {
	if a.Repeats() {
		return fmt.Sprintf("%s %s @ %s", a.Kind, a.Target, a.Rate)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Target)
}
