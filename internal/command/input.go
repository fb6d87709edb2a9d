package command

import (
	"fmt"
	"strings"
)

// InputKind distinguishes keyboard keys from mouse buttons.
type InputKind uint8

const (
	// KindKey identifies a keyboard key by canonical name.
	KindKey InputKind = iota + 1
	// KindButton identifies a mouse button from the fixed Button set.
	KindButton
)

// String returns the configuration spelling of the kind.
func (k InputKind) String() string {
	switch k {
	case KindKey:
		return "Key"
	case KindButton:
		return "Button"
	default:
		return fmt.Sprintf("InputKind(%d)", k)
	}
}

// ParseInputKind accepts "Key" or "Button" (case-insensitive).
func ParseInputKind(s string) (InputKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "key":
		return KindKey, true
	case "button":
		return KindButton, true
	default:
		return 0, false
	}
}

// Button is one of the mouse buttons natty can listen to or synthesize.
type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
	ButtonRight
	ButtonScrollUp
	ButtonScrollDown
	ButtonBack
	ButtonForward
)

// Buttons lists every Button in declaration order.
var Buttons = []Button{
	ButtonLeft,
	ButtonMiddle,
	ButtonRight,
	ButtonScrollUp,
	ButtonScrollDown,
	ButtonBack,
	ButtonForward,
}

var buttonNames = map[Button]string{
	ButtonLeft:       "left",
	ButtonMiddle:     "middle",
	ButtonRight:      "right",
	ButtonScrollUp:   "scroll-up",
	ButtonScrollDown: "scroll-down",
	ButtonBack:       "back",
	ButtonForward:    "forward",
}

// String returns the canonical lower-case button name.
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", b)
}

// ParseButton resolves a button name. Full names are matched ignoring case,
// '-', '_' and spaces ("ScrollUp", "scroll-up", "scroll_up"), and the
// single-letter forms L, M, R, B and F are accepted as well.
func ParseButton(s string) (Button, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "L":
		return ButtonLeft, true
	case "M":
		return ButtonMiddle, true
	case "R":
		return ButtonRight, true
	case "B":
		return ButtonBack, true
	case "F":
		return ButtonForward, true
	}

	folded := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	switch folded {
	case "left":
		return ButtonLeft, true
	case "middle", "center":
		return ButtonMiddle, true
	case "right":
		return ButtonRight, true
	case "scrollup", "wheelup":
		return ButtonScrollUp, true
	case "scrolldown", "wheeldown":
		return ButtonScrollDown, true
	case "back", "side":
		return ButtonBack, true
	case "forward", "extra":
		return ButtonForward, true
	default:
		return 0, false
	}
}

// Input identifies a physical or synthetic input: a named key or a mouse
// button. It is used both as a command trigger and as an action target.
//
// Input is comparable and is the key type of the command table; two Inputs
// are the same trigger iff they are ==. Key names must already be
// canonical (see keymap.Canonical) before an Input is built.
type Input struct {
	Kind   InputKind
	Key    string
	Button Button
}

// KeyInput returns an Input for the canonical key name.
func KeyInput(name string) Input {
	return Input{Kind: KindKey, Key: name}
}

// ButtonInput returns an Input for a mouse button.
func ButtonInput(b Button) Input {
	return Input{Kind: KindButton, Button: b}
}

// IsKey reports whether the input is a keyboard key.
func (i Input) IsKey() bool { return i.Kind == KindKey }

// IsButton reports whether the input is a mouse button.
func (i Input) IsButton() bool { return i.Kind == KindButton }

// String renders the input as "key:<name>" or "button:<name>".
func (i Input) String() string {
	switch i.Kind {
	case KindKey:
		return "key:" + i.Key
	case KindButton:
		return "button:" + i.Button.String()
	default:
		return "input:unknown"
	}
}
