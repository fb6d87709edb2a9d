//go:build linux

package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/roach88/natty/internal/engine"
	"github.com/roach88/natty/internal/keymap"
)

// EvdevSource reads events from one or more evdev nodes.
type EvdevSource struct {
	tr    *Translator
	files []*os.File

	closeOnce sync.Once
}

// OpenSource opens the given event nodes, or every keyboard and mouse the
// kernel lists when paths is empty. natty's own virtual device is skipped.
func OpenSource(paths []string, keys *keymap.Keymap) (*EvdevSource, error) {
	if len(paths) == 0 {
		found, err := discover()
		if err != nil {
			return nil, err
		}
		paths = found
	}

	s := &EvdevSource{tr: NewTranslator(keys)}
	for _, p := range paths {
		f, err := os.OpenFile(p, os.O_RDONLY, 0)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open input device %s: %w", p, err)
		}

		name, err := deviceName(f)
		if err != nil {
			slog.Debug("device name unavailable", "path", p, "error", err)
		}
		if name == VirtualDeviceName {
			slog.Warn("skipping natty virtual device", "path", p)
			f.Close()
			continue
		}

		slog.Info("listening to input device", "path", p, "name", name)
		s.files = append(s.files, f)
	}

	if len(s.files) == 0 {
		return nil, ErrNoDevices
	}
	return s, nil
}

func discover() ([]string, error) {
	f, err := os.Open(procDevices)
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	defer f.Close()

	infos, err := ParseDevices(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", procDevices, err)
	}

	paths := SelectPaths(infos)
	if len(paths) == 0 {
		return nil, ErrNoDevices
	}
	return paths, nil
}

// Events starts one reader per device and returns their merged output.
// The channel is closed once every reader has stopped, either because ctx
// was cancelled or because its device failed. Call Events once.
func (s *EvdevSource) Events(ctx context.Context) <-chan engine.Event {
	out := make(chan engine.Event, 64)
	stop := context.AfterFunc(ctx, func() { s.Close() })

	var wg sync.WaitGroup
	for _, f := range s.files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.read(ctx, f, out)
		}()
	}

	go func() {
		wg.Wait()
		stop()
		close(out)
	}()

	return out
}

func (s *EvdevSource) read(ctx context.Context, f *os.File, out chan<- engine.Event) {
	buf := make([]byte, eventSize*64)
	for {
		n, err := f.Read(buf)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, os.ErrClosed) {
				slog.Error("input device read failed", "path", f.Name(), "error", err)
			}
			return
		}

		for _, raw := range decodeEvents(buf[:n]) {
			for _, ev := range s.tr.Events(raw) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// Close releases every device. Blocked reads return.
func (s *EvdevSource) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		for _, f := range s.files {
			if err := f.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
