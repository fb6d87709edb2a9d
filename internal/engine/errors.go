package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/natty/internal/command"
)

var (
	// ErrSourceClosed is returned by Run when the event source ends.
	ErrSourceClosed = errors.New("event source closed")

	errUnknownAction = errors.New("unknown action kind")
)

// DispatchError wraps a sink failure with the operation and target that
// failed.
type DispatchError struct {
	Op     Op
	Target command.Input
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// IsDispatchError reports whether err is or wraps a DispatchError.
func IsDispatchError(err error) bool {
	var de *DispatchError
	return errors.As(err, &de)
}
