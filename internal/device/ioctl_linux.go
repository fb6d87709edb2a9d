//go:build linux

package device

import (
	"bytes"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request numbers from linux/uinput.h and linux/input.h.
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	eviocgName256 = 0x81004506 // EVIOCGNAME(256)
)

// deviceName reads the device's name with EVIOCGNAME.
func deviceName(f *os.File) (string, error) {
	raw, err := f.SyscallConn()
	if err != nil {
		return "", err
	}

	var (
		buf   [256]byte
		errno unix.Errno
	)
	err = raw.Control(func(fd uintptr) {
		_, _, errno = unix.Syscall(unix.SYS_IOCTL, fd, eviocgName256, uintptr(unsafe.Pointer(&buf[0])))
	})
	if err != nil {
		return "", err
	}
	if errno != 0 {
		return "", errno
	}

	if i := bytes.IndexByte(buf[:], 0); i >= 0 {
		return string(buf[:i]), nil
	}
	return string(buf[:]), nil
}
