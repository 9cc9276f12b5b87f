// Package stats tracks ingest, resolver, and device counters for the
// status endpoint, the monitor, and periodic console output.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker tracks daemon activity by source and resolver state.
type Tracker struct {
	// counters live in sync.Map + atomic.Uint64 so per-tick increments don't fight over a mutex
	ingestCounts sync.Map // origin -> *atomic.Uint64
	stateCounts  sync.Map // resolver state -> *atomic.Uint64
	rejected     atomic.Uint64
	frames       atomic.Uint64
	deviceErrors atomic.Uint64
	reconnects   atomic.Uint64
	start        atomic.Int64
}

// NewTracker creates a new stats tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.start.Store(time.Now().UnixNano())
	return t
}

// IncrementIngest increases the accepted-payload count for an origin
// (udp, mqtt, file).
func (t *Tracker) IncrementIngest(origin string) {
	incrementCounter(&t.ingestCounts, origin)
}

// IncrementState increases the count for a resolver outcome (static,
// promoted, exclusive, rotation, fallback).
func (t *Tracker) IncrementState(state string) {
	incrementCounter(&t.stateCounts, state)
}

// IncrementRejected counts a payload the sanitizer refused.
func (t *Tracker) IncrementRejected() {
	t.rejected.Add(1)
}

// IncrementFrames counts a frame successfully written to the device.
func (t *Tracker) IncrementFrames() {
	t.frames.Add(1)
}

// IncrementDeviceErrors counts a failed device write or flush.
func (t *Tracker) IncrementDeviceErrors() {
	t.deviceErrors.Add(1)
}

// IncrementReconnects counts a device reconnect cycle.
func (t *Tracker) IncrementReconnects() {
	t.reconnects.Add(1)
}

// GetIngestCounts returns a copy of accepted-payload counts by origin.
func (t *Tracker) GetIngestCounts() map[string]uint64 {
	return copyCounts(&t.ingestCounts)
}

// GetStateCounts returns a copy of resolver outcome counts.
func (t *Tracker) GetStateCounts() map[string]uint64 {
	return copyCounts(&t.stateCounts)
}

// Rejected returns the cumulative rejected-payload count.
func (t *Tracker) Rejected() uint64 {
	return t.rejected.Load()
}

// Frames returns the cumulative frames written to the device.
func (t *Tracker) Frames() uint64 {
	return t.frames.Load()
}

// DeviceErrors returns the cumulative device error count.
func (t *Tracker) DeviceErrors() uint64 {
	return t.deviceErrors.Load()
}

// Reconnects returns the cumulative device reconnect count.
func (t *Tracker) Reconnects() uint64 {
	return t.reconnects.Load()
}

// GetUptime returns how long the tracker has been running.
func (t *Tracker) GetUptime() time.Duration {
	return time.Since(time.Unix(0, t.start.Load()))
}

// SnapshotLines returns human-readable stats ready for console display.
func (t *Tracker) SnapshotLines() []string {
	return []string{
		formatMapCounts("Ingest by origin", &t.ingestCounts),
		formatMapCounts("Resolver states", &t.stateCounts),
		fmt.Sprintf("Frames: written=%d rejected=%d device_errors=%d reconnects=%d",
			t.frames.Load(), t.rejected.Load(), t.deviceErrors.Load(), t.reconnects.Load()),
	}
}

func copyCounts(m *sync.Map) map[string]uint64 {
	counts := make(map[string]uint64)
	m.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Uint64).Load()
		return true
	})
	return counts
}

func formatMapCounts(label string, counts *sync.Map) string {
	snapshot := copyCounts(counts)
	if len(snapshot) == 0 {
		return label + ": (none)"
	}
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	builder.WriteString(label)
	builder.WriteString(": ")
	for i, key := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(&builder, "%s=%d", key, snapshot[key])
	}
	return builder.String()
}

func incrementCounter(m *sync.Map, key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if value, ok := m.Load(key); ok {
		value.(*atomic.Uint64).Add(1)
		return
	}
	counter := &atomic.Uint64{}
	actual, loaded := m.LoadOrStore(key, counter)
	if loaded {
		actual.(*atomic.Uint64).Add(1)
		return
	}
	counter.Add(1)
}
