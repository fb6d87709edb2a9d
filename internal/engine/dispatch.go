package engine

import "github.com/roach88/natty/internal/command"

// Sink synthesizes output on a key or mouse button. Implementations may
// fail with OS errors; the engine logs those and carries on.
type Sink interface {
	Press(target command.Input) error
	Release(target command.Input) error
	Click(target command.Input) error
}

// Op names a sink operation.
type Op string

const (
	OpPress   Op = "press"
	OpRelease Op = "release"
	OpClick   Op = "click"
)

// dispatch performs one firing. Both action variants are delivered as a
// click so a press-once action never leaves a synthetic key held down.
func dispatch(sink Sink, f Firing) error {
	var err error
	switch f.Action.Kind {
	case command.ActionKeyPress, command.ActionButtonPress,
		command.ActionKeyClick, command.ActionButtonClick:
		err = sink.Click(f.Action.Target)
	default:
		return &DispatchError{Op: OpClick, Target: f.Action.Target, Err: errUnknownAction}
	}
	if err != nil {
		return &DispatchError{Op: OpClick, Target: f.Action.Target, Err: err}
	}
	return nil
}
