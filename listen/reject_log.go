package listen

import (
	"fmt"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

const defaultRejectLogKeys = 512

// rejectLog suppresses repeated reject log lines for identical
// payloads inside a window, keyed by payload hash. The first sighting
// always logs; repeats are counted and surface as a suppressed total
// when the window reopens.
type rejectLog struct {
	mu      sync.Mutex
	window  time.Duration
	maxKeys int
	entries map[uint64]rejectEntry
}

type rejectEntry struct {
	nextEmit   time.Time
	lastSeen   time.Time
	suppressed uint64
}

func newRejectLog(window time.Duration, maxKeys int) *rejectLog {
	if window <= 0 || maxKeys <= 0 {
		return nil
	}
	return &rejectLog{
		window:  window,
		maxKeys: maxKeys,
		entries: make(map[uint64]rejectEntry, maxKeys),
	}
}

// Process reports whether a reject for this payload should be logged
// now, plus a suffix carrying the suppressed count when one applies.
// A nil rejectLog always emits.
func (r *rejectLog) Process(payload []byte, now time.Time) (string, bool) {
	if r == nil {
		return "", true
	}
	key := xxh3.Hash(payload)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, found := r.entries[key]
	if !found {
		r.evictOldestLocked()
		r.entries[key] = rejectEntry{
			nextEmit: now.Add(r.window),
			lastSeen: now,
		}
		return "", true
	}
	entry.lastSeen = now
	if now.Before(entry.nextEmit) {
		entry.suppressed++
		r.entries[key] = entry
		return "", false
	}
	suppressed := entry.suppressed
	entry.suppressed = 0
	entry.nextEmit = now.Add(r.window)
	r.entries[key] = entry
	if suppressed > 0 {
		return fmt.Sprintf(" (suppressed=%d over %s)", suppressed, r.window), true
	}
	return "", true
}

func (r *rejectLog) evictOldestLocked() {
	if len(r.entries) < r.maxKeys {
		return
	}
	var oldestKey uint64
	var oldestSeen time.Time
	have := false
	for key, entry := range r.entries {
		if !have || entry.lastSeen.Before(oldestSeen) {
			oldestKey = key
			oldestSeen = entry.lastSeen
			have = true
		}
	}
	if have {
		delete(r.entries, oldestKey)
	}
}
