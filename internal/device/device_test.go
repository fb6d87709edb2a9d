package device

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/natty/internal/command"
	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
)

func TestCodecRoundTrip(t *testing.T) {
	in := []rawEvent{
		{Type: evKey, Code: btnLeft, Value: valuePress},
		{Type: evRel, Code: relWheel, Value: -1},
		syn(),
	}
	buf := encodeEvents(in...)
	require.Len(t, buf, 3*eventSize)
	assert.Equal(t, in, decodeEvents(buf))
}

func TestDecodeIgnoresPartialRecord(t *testing.T) {
	buf := encodeEvents(rawEvent{Type: evKey, Code: 30, Value: valuePress})
	buf = append(buf, make([]byte, eventSize-1)...)
	assert.Len(t, decodeEvents(buf), 1)
	assert.Empty(t, decodeEvents(buf[:eventSize-1]))
}

func TestEncodeUserDev(t *testing.T) {
	buf := encodeUserDev(VirtualDeviceName, 0x6e61, 0x7474)
	require.Len(t, buf, 1116)
	assert.Equal(t, VirtualDeviceName, string(buf[:len(VirtualDeviceName)]))
	assert.Zero(t, buf[len(VirtualDeviceName)], "name is NUL-terminated")
	assert.Equal(t, []byte{0x06, 0x00, 0x61, 0x6e, 0x74, 0x74, 0x01, 0x00}, buf[80:88])
}

func TestTranslatorEvents(t *testing.T) {
	tr := NewTranslator(keymap.Default())
	keyA := command.KeyInput("a")
	back := command.ButtonInput(command.ButtonBack)
	up := command.ButtonInput(command.ButtonScrollUp)
	down := command.ButtonInput(command.ButtonScrollDown)

	tests := []struct {
		name string
		in   rawEvent
		want []engine.Event
	}{
		{"key press", rawEvent{Type: evKey, Code: 30, Value: valuePress}, []engine.Event{engine.Press(keyA)}},
		{"key release", rawEvent{Type: evKey, Code: 30, Value: valueRelease}, []engine.Event{engine.Release(keyA)}},
		{"auto-repeat dropped", rawEvent{Type: evKey, Code: 30, Value: valueRepeat}, nil},
		{"side button", rawEvent{Type: evKey, Code: btnSide, Value: valuePress}, []engine.Event{engine.Press(back)}},
		{"wheel up", rawEvent{Type: evRel, Code: relWheel, Value: 1}, []engine.Event{engine.Press(up), engine.Release(up)}},
		{"wheel down", rawEvent{Type: evRel, Code: relWheel, Value: -2}, []engine.Event{engine.Press(down), engine.Release(down)}},
		{"pointer motion", rawEvent{Type: evRel, Code: 0x00, Value: 5}, nil},
		{"unknown key code", rawEvent{Type: evKey, Code: 0x2ff, Value: valuePress}, nil},
		{"sync", syn(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Events(tt.in))
		})
	}
}

func TestTranslatorReport(t *testing.T) {
	tr := NewTranslator(keymap.Default())

	got, err := tr.report(command.ButtonInput(command.ButtonLeft), true)
	require.NoError(t, err)
	assert.Equal(t, []rawEvent{{Type: evKey, Code: btnLeft, Value: valuePress}, syn()}, got)

	got, err = tr.report(command.KeyInput("space"), false)
	require.NoError(t, err)
	assert.Equal(t, []rawEvent{{Type: evKey, Code: 57, Value: valueRelease}, syn()}, got)

	got, err = tr.report(command.ButtonInput(command.ButtonScrollDown), true)
	require.NoError(t, err)
	assert.Equal(t, []rawEvent{{Type: evRel, Code: relWheel, Value: -1}, syn()}, got)

	got, err = tr.report(command.ButtonInput(command.ButtonScrollUp), false)
	require.NoError(t, err)
	assert.Empty(t, got, "scroll release is a no-op")

	_, err = tr.report(command.KeyInput("no-such-key"), true)
	assert.Error(t, err)
}

func TestKeyBitsIncludeButtons(t *testing.T) {
	bits := NewTranslator(keymap.Default()).KeyBits()
	for _, c := range []uint16{30, 57, btnLeft, btnRight, btnMiddle, btnSide, btnExtra} {
		assert.Contains(t, bits, c)
	}
}

func TestParseDevices(t *testing.T) {
	f, err := os.Open("testdata/devices")
	require.NoError(t, err)
	defer f.Close()

	infos, err := ParseDevices(f)
	require.NoError(t, err)
	require.Len(t, infos, 5)

	assert.Equal(t, "AT Translated Set 2 keyboard", infos[1].Name)
	assert.Equal(t, []string{"sysrq", "kbd", "leds", "event3"}, infos[1].Handlers)
	assert.Equal(t, "/dev/input/event3", infos[1].Path())
	assert.False(t, infos[3].IsInput())

	assert.Equal(t, []string{
		"/dev/input/event0",
		"/dev/input/event3",
		"/dev/input/event7",
	}, SelectPaths(infos), "headphone jack and the virtual device are skipped")
}
