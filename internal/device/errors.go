package device

import "errors"

var (
	// ErrUnsupported is returned by OpenSource and OpenSink on platforms
	// without evdev/uinput.
	ErrUnsupported = errors.New("input devices are only supported on linux")

	// ErrNoDevices is returned when discovery finds no keyboard or mouse.
	ErrNoDevices = errors.New("no input devices found")
)
