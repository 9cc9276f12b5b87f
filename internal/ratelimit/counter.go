// Package ratelimit provides a counter that bounds how often a
// recurring failure is logged.
package ratelimit

import (
	"sync/atomic"
	"time"
)

// Counter counts events and allows a log line at most once per
// interval. A zero or negative interval never throttles. Safe for
// concurrent use.
type Counter struct {
	interval time.Duration
	lastEmit atomic.Int64
	total    atomic.Uint64
}

func NewCounter(interval time.Duration) *Counter {
	return &Counter{interval: interval}
}

// Inc records one event and reports the running total plus whether a
// log line may be emitted now.
func (c *Counter) Inc() (uint64, bool) {
	if c == nil {
		return 0, false
	}
	total := c.total.Add(1)
	if c.interval <= 0 {
		return total, true
	}
	now := time.Now().UTC().UnixNano()
	last := c.lastEmit.Load()
	if now-last < c.interval.Nanoseconds() {
		return total, false
	}
	return total, c.lastEmit.CompareAndSwap(last, now)
}

// Total returns the cumulative event count.
func (c *Counter) Total() uint64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}
