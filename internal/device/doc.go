// Package device connects the engine to Linux input devices.
//
// EvdevSource reads physical keyboards and mice from /dev/input/event*
// and turns their reports into engine events. UinputSink creates a virtual
// device through /dev/uinput and implements engine.Sink on it.
//
// The virtual device is named VirtualDeviceName. Sources skip any device
// with that name so natty never reacts to its own output.
//
// The wire format helpers (event codec, translation, device discovery)
// are portable and tested everywhere. Opening real devices is Linux-only;
// other platforms get stubs returning ErrUnsupported.
package device
