//go:build !linux

package device

import (
	"context"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
)

// EvdevSource is unavailable on this platform.
type EvdevSource struct{}

// OpenSource always fails with ErrUnsupported.
func OpenSource(paths []string, keys *keymap.Keymap) (*EvdevSource, error) {
	return nil, ErrUnsupported
}

// Events returns a closed channel.
func (s *EvdevSource) Events(ctx context.Context) <-chan engine.Event {
	ch := make(chan engine.Event)
	close(ch)
	return ch
}

func (s *EvdevSource) Close() error { return nil }

// UinputSink is unavailable on this platform.
type UinputSink struct{}

// OpenSink always fails with ErrUnsupported.
func OpenSink(keys *keymap.Keymap) (*UinputSink, error) {
	return nil, ErrUnsupported
}

func (s *UinputSink) Press(command.Input) error   { return ErrUnsupported }
func (s *UinputSink) Release(command.Input) error { return ErrUnsupported }
func (s *UinputSink) Click(command.Input) error   { return ErrUnsupported }
func (s *UinputSink) Close() error                { return nil }
