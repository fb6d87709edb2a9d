//go:build linux

package device

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
)

const uinputPath = "/dev/uinput"

// Virtual device identity ("na", "tt").
const (
	vendorID  uint16 = 0x6e61
	productID uint16 = 0x7474
)

var _ engine.Sink = (*UinputSink)(nil)

// UinputSink synthesizes input through a uinput virtual device.
type UinputSink struct {
	mu sync.Mutex
	fd int
	tr *Translator
}

// OpenSink creates the virtual device. It advertises every key in keys,
// every mouse button and the scroll wheel.
func OpenSink(keys *keymap.Keymap) (*UinputSink, error) {
	fd, err := unix.Open(uinputPath, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uinputPath, err)
	}

	s := &UinputSink{fd: fd, tr: NewTranslator(keys)}
	if err := s.setup(); err != nil {
		unix.Close(fd)
		return nil, err
	}

	slog.Info("virtual device created", "name", VirtualDeviceName)
	return s, nil
}

func (s *UinputSink) setup() error {
	for _, ev := range []uint16{evSyn, evKey, evRel} {
		if err := unix.IoctlSetInt(s.fd, uiSetEvBit, int(ev)); err != nil {
			return fmt.Errorf("UI_SET_EVBIT %#x: %w", ev, err)
		}
	}
	for _, code := range s.tr.KeyBits() {
		if err := unix.IoctlSetInt(s.fd, uiSetKeyBit, int(code)); err != nil {
			return fmt.Errorf("UI_SET_KEYBIT %#x: %w", code, err)
		}
	}
	if err := unix.IoctlSetInt(s.fd, uiSetRelBit, int(relWheel)); err != nil {
		return fmt.Errorf("UI_SET_RELBIT: %w", err)
	}

	if _, err := unix.Write(s.fd, encodeUserDev(VirtualDeviceName, vendorID, productID)); err != nil {
		return fmt.Errorf("write uinput_user_dev: %w", err)
	}
	if err := unix.IoctlSetInt(s.fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

// Press implements engine.Sink.
func (s *UinputSink) Press(target command.Input) error {
	return s.emit(target, true)
}

// Release implements engine.Sink.
func (s *UinputSink) Release(target command.Input) error {
	return s.emit(target, false)
}

// Click implements engine.Sink as a press immediately followed by a
// release.
func (s *UinputSink) Click(target command.Input) error {
	if err := s.emit(target, true); err != nil {
		return err
	}
	return s.emit(target, false)
}

func (s *UinputSink) emit(target command.Input, pressed bool) error {
	events, err := s.tr.report(target, pressed)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fd < 0 {
		return os.ErrClosed
	}
	_, err = unix.Write(s.fd, encodeEvents(events...))
	return err
}

// Close destroys the virtual device.
func (s *UinputSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fd < 0 {
		return nil
	}
	if err := unix.IoctlSetInt(s.fd, uiDevDestroy, 0); err != nil {
		slog.Warn("UI_DEV_DESTROY failed", "error", err)
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
