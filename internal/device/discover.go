package device

import (
	"bufio"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// procDevices lists the kernel's input devices.
const procDevices = "/proc/bus/input/devices"

// Info describes one input device as listed in /proc/bus/input/devices.
type Info struct {
	Name     string
	Handlers []string
}

// Path returns the device node of the info's event handler, or "" when it
// has none.
func (i Info) Path() string {
	for _, h := range i.Handlers {
		if strings.HasPrefix(h, "event") {
			return filepath.Join("/dev/input", h)
		}
	}
	return ""
}

// IsInput reports whether the device is a keyboard or a mouse.
func (i Info) IsInput() bool {
	return slices.Contains(i.Handlers, "kbd") || slices.ContainsFunc(i.Handlers, func(h string) bool {
		return strings.HasPrefix(h, "mouse")
	})
}

// ParseDevices parses the /proc/bus/input/devices format: blank-line
// separated blocks of "X: ..." lines, of which N (name) and H (handlers)
// are used.
func ParseDevices(r io.Reader) ([]Info, error) {
	var (
		out  []Info
		cur  Info
		seen bool
	)
	flush := func() {
		if seen {
			out = append(out, cur)
		}
		cur, seen = Info{}, false
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			flush()
			continue
		}

		switch {
		case strings.HasPrefix(line, "N: Name="):
			cur.Name = strings.Trim(strings.TrimPrefix(line, "N: Name="), `"`)
			seen = true
		case strings.HasPrefix(line, "H: Handlers="):
			cur.Handlers = strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
			seen = true
		}
	}
	flush()

	return out, sc.Err()
}

// SelectPaths returns the event nodes of keyboards and mice, skipping
// natty's own virtual device.
func SelectPaths(infos []Info) []string {
	var paths []string
	for _, info := range infos {
		if info.Name == VirtualDeviceName || !info.IsInput() {
			continue
		}
		if p := info.Path(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
