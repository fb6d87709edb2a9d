package device

import (
	"encoding/binary"
	"fmt"
)

// VirtualDeviceName names the uinput device natty creates.
const VirtualDeviceName = "natty virtual input"

// Event types and codes from linux/input-event-codes.h.
const (
	evSyn uint16 = 0x00
	evKey uint16 = 0x01
	evRel uint16 = 0x02

	synReport uint16 = 0x00
	relWheel  uint16 = 0x08

	btnLeft   uint16 = 0x110
	btnRight  uint16 = 0x111
	btnMiddle uint16 = 0x112
	btnSide   uint16 = 0x113
	btnExtra  uint16 = 0x114
)

// Key values of an EV_KEY report.
const (
	valueRelease int32 = 0
	valuePress   int32 = 1
	valueRepeat  int32 = 2
)

// eventSize is sizeof(struct input_event) on 64-bit Linux: a 16-byte
// timeval followed by type, code and value.
const eventSize = 24

// rawEvent is one decoded input_event. The timestamp is not kept; the
// engine stamps events with its own clock.
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

func (e rawEvent) String() string {
	return fmt.Sprintf("type=%#x code=%#x value=%d", e.Type, e.Code, e.Value)
}

// decodeEvents splits buf into input_event records. A trailing partial
// record is ignored.
func decodeEvents(buf []byte) []rawEvent {
	out := make([]rawEvent, 0, len(buf)/eventSize)
	for len(buf) >= eventSize {
		out = append(out, rawEvent{
			Type:  binary.LittleEndian.Uint16(buf[16:18]),
			Code:  binary.LittleEndian.Uint16(buf[18:20]),
			Value: int32(binary.LittleEndian.Uint32(buf[20:24])),
		})
		buf = buf[eventSize:]
	}
	return out
}

// encodeEvents serializes records with zero timestamps; the kernel stamps
// events written to uinput.
func encodeEvents(events ...rawEvent) []byte {
	buf := make([]byte, eventSize*len(events))
	for i, e := range events {
		rec := buf[i*eventSize:]
		binary.LittleEndian.PutUint16(rec[16:18], e.Type)
		binary.LittleEndian.PutUint16(rec[18:20], e.Code)
		binary.LittleEndian.PutUint32(rec[20:24], uint32(e.Value))
	}
	return buf
}

func syn() rawEvent {
	return rawEvent{Type: evSyn, Code: synReport}
}

// uinput_user_dev layout: name[80], input_id (4 x u16), ff_effects_max
// (u32), then absmax/absmin/absfuzz/absflat as 64 x s32 each.
const (
	uinputMaxNameSize = 80
	absCount          = 64
	userDevSize       = uinputMaxNameSize + 8 + 4 + 4*absCount*4

	busVirtual uint16 = 0x06
)

// encodeUserDev builds the uinput_user_dev record that names and
// identifies the virtual device.
func encodeUserDev(name string, vendor, product uint16) []byte {
	buf := make([]byte, userDevSize)
	copy(buf[:uinputMaxNameSize-1], name)

	id := buf[uinputMaxNameSize:]
	binary.LittleEndian.PutUint16(id[0:2], busVirtual)
	binary.LittleEndian.PutUint16(id[2:4], vendor)
	binary.LittleEndian.PutUint16(id[4:6], product)
	binary.LittleEndian.PutUint16(id[6:8], 1)
	return buf
}
