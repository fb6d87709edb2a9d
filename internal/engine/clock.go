package engine

import "time"

// Clock supplies millisecond timestamps to the scheduler. Successive
// readings must never decrease.
type Clock interface {
	NowMillis() int64
}

// SystemClock reports Unix milliseconds advanced by the monotonic clock.
//
// The wall-clock reading is taken once at construction; later readings add
// the monotonic elapsed time so that wall-clock jumps cannot move time
// backwards for the scheduler.
type SystemClock struct {
	start time.Time
	base  int64
}

// NewSystemClock creates a clock anchored at the current time.
func NewSystemClock() *SystemClock {
	now := time.Now()
	return &SystemClock{start: now, base: now.UnixMilli()}
}

// NowMillis returns the current time in milliseconds since the Unix epoch.
func (c *SystemClock) NowMillis() int64 {
	return c.base + time.Since(c.start).Milliseconds()
}
