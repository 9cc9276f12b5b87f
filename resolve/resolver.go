// Package resolve implements the content-resolution state machine that
// picks exactly one frame to display on every refresh tick.
//
// The state is fully recomputed from the current time and the current
// inbox record on each tick. There is no persisted rotation index to
// get out of sync: the active slot derives from the wall clock, so
// independent instances agree on rotation phase without coordination
// and a restart cannot skew it.
package resolve

import (
	"time"

	"vfdd/frame"
	"vfdd/inbox"
	"vfdd/screen"
)

// State identifies which priority rule produced the frame for a tick.
type State int

const (
	// StateStatic: a non-empty override pair was supplied at startup
	// and is shown forever. Terminal for that run.
	StateStatic State = iota
	// StatePromoted: the latest pushed record's promotion window is
	// still open, so it preempts rotation.
	StatePromoted
	// StateExclusive: only pushed content may be shown; a blank frame
	// substitutes when no valid record exists.
	StateExclusive
	// StateRotation: the wall-clock-derived slot among providers that
	// yielded content.
	StateRotation
	// StateFallback: no provider yielded; the guaranteed screen is
	// shown instead of nothing.
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateStatic:
		return "static"
	case StatePromoted:
		return "promoted"
	case StateExclusive:
		return "exclusive"
	case StateRotation:
		return "rotation"
	case StateFallback:
		return "fallback"
	}
	return "unknown"
}

// Config wires a Resolver. Static, when non-nil, pins the display for
// the process lifetime. Fallback must always yield content.
type Config struct {
	Static    *frame.Frame
	Exclusive bool
	Interval  time.Duration
	Inbox     *inbox.Store
	Screens   *screen.Registry
	Fallback  screen.Provider
}

// Resolver turns the set of currently valid sources into a single
// chosen frame. It only reads shared state; it never mutates a record.
type Resolver struct {
	static    *frame.Frame
	exclusive bool
	interval  time.Duration
	inbox     *inbox.Store
	screens   *screen.Registry
	fallback  screen.Provider
}

func New(cfg Config) *Resolver {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Resolver{
		static:    cfg.Static,
		exclusive: cfg.Exclusive,
		interval:  cfg.Interval,
		inbox:     cfg.Inbox,
		screens:   cfg.Screens,
		fallback:  cfg.Fallback,
	}
}

// Resolve picks the frame for this tick, in strict priority order:
// static override, promoted pushed content, exclusive mode, rotation.
func (r *Resolver) Resolve(now time.Time) (frame.Frame, State) {
	if r.static != nil {
		return *r.static, StateStatic
	}
	if rec, ok := r.inbox.Promoted(now); ok {
		return rec.Frame, StatePromoted
	}
	if r.exclusive {
		if rec, ok := r.inbox.Valid(now); ok {
			return rec.Frame, StateExclusive
		}
		return frame.Frame{}, StateExclusive
	}

	active := r.screens.Poll(now)
	if len(active) == 0 {
		if f, ok := r.fallback.Frame(now); ok {
			return f, StateFallback
		}
		return frame.Frame{}, StateFallback
	}
	return active[r.slot(now, len(active))], StateRotation
}

// slot computes floor(now/interval) mod count from the wall clock.
func (r *Resolver) slot(now time.Time, count int) int {
	seconds := int64(r.interval / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	slot := (now.Unix() / seconds) % int64(count)
	if slot < 0 {
		slot += int64(count)
	}
	return int(slot)
}

// Interval exposes the rotation interval for status reporting.
func (r *Resolver) Interval() time.Duration {
	return r.interval
}
