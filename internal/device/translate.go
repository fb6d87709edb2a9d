package device

import (
	"fmt"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
)

var buttonCodes = map[command.Button]uint16{
	command.ButtonLeft:    btnLeft,
	command.ButtonRight:   btnRight,
	command.ButtonMiddle:  btnMiddle,
	command.ButtonBack:    btnSide,
	command.ButtonForward: btnExtra,
}

var codeButtons = func() map[uint16]command.Button {
	m := make(map[uint16]command.Button, len(buttonCodes))
	for b, c := range buttonCodes {
		m[c] = b
	}
	return m
}()

// Translator converts between evdev reports and natty inputs.
type Translator struct {
	keys *keymap.Keymap
}

// NewTranslator returns a Translator using keys for keyboard codes.
func NewTranslator(keys *keymap.Keymap) *Translator {
	return &Translator{keys: keys}
}

// Events turns one raw report into engine events. Auto-repeat, sync and
// unknown codes yield nothing. A wheel notch yields a press immediately
// followed by a release of the matching scroll button.
func (t *Translator) Events(e rawEvent) []engine.Event {
	switch e.Type {
	case evKey:
		in, ok := t.input(e.Code)
		if !ok {
			return nil
		}
		switch e.Value {
		case valuePress:
			return []engine.Event{engine.Press(in)}
		case valueRelease:
			return []engine.Event{engine.Release(in)}
		default:
			return nil
		}

	case evRel:
		if e.Code != relWheel || e.Value == 0 {
			return nil
		}
		b := command.ButtonScrollUp
		if e.Value < 0 {
			b = command.ButtonScrollDown
		}
		in := command.ButtonInput(b)
		return []engine.Event{engine.Press(in), engine.Release(in)}
	}
	return nil
}

func (t *Translator) input(code uint16) (command.Input, bool) {
	if b, ok := codeButtons[code]; ok {
		return command.ButtonInput(b), true
	}
	if name, ok := t.keys.Name(code); ok {
		return command.KeyInput(name), true
	}
	return command.Input{}, false
}

// report returns the records that put target into the pressed or released
// state, terminated by a sync report. Scroll buttons emit one wheel notch
// on press and nothing on release.
func (t *Translator) report(target command.Input, pressed bool) ([]rawEvent, error) {
	if target.IsButton() {
		switch target.Button {
		case command.ButtonScrollUp, command.ButtonScrollDown:
			if !pressed {
				return nil, nil
			}
			notch := int32(1)
			if target.Button == command.ButtonScrollDown {
				notch = -1
			}
			return []rawEvent{{Type: evRel, Code: relWheel, Value: notch}, syn()}, nil
		}
	}

	code, err := t.code(target)
	if err != nil {
		return nil, err
	}
	value := valueRelease
	if pressed {
		value = valuePress
	}
	return []rawEvent{{Type: evKey, Code: code, Value: value}, syn()}, nil
}

func (t *Translator) code(target command.Input) (uint16, error) {
	if target.IsButton() {
		if c, ok := buttonCodes[target.Button]; ok {
			return c, nil
		}
		return 0, fmt.Errorf("no evdev code for button %s", target.Button)
	}
	if c, ok := t.keys.Code(target.Key); ok {
		return c, nil
	}
	return 0, fmt.Errorf("no evdev code for key %q", target.Key)
}

// KeyBits lists every EV_KEY code the virtual device must advertise.
func (t *Translator) KeyBits() []uint16 {
	bits := t.keys.Codes()
	for _, b := range command.Buttons {
		if c, ok := buttonCodes[b]; ok {
			bits = append(bits, c)
		}
	}
	return bits
}
