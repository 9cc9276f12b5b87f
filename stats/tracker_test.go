package stats

import (
	"strings"
	"testing"
)

func TestTrackerCountsByKey(t *testing.T) {
	tr := NewTracker()
	tr.IncrementIngest("udp")
	tr.IncrementIngest("udp")
	tr.IncrementIngest("mqtt")
	tr.IncrementState("rotation")
	tr.IncrementRejected()
	tr.IncrementFrames()
	tr.IncrementFrames()
	tr.IncrementDeviceErrors()
	tr.IncrementReconnects()

	ingest := tr.GetIngestCounts()
	if ingest["udp"] != 2 || ingest["mqtt"] != 1 {
		t.Fatalf("ingest counts = %v", ingest)
	}
	if states := tr.GetStateCounts(); states["rotation"] != 1 {
		t.Fatalf("state counts = %v", states)
	}
	if tr.Rejected() != 1 || tr.Frames() != 2 || tr.DeviceErrors() != 1 || tr.Reconnects() != 1 {
		t.Fatalf("scalar counters wrong: rejected=%d frames=%d errors=%d reconnects=%d",
			tr.Rejected(), tr.Frames(), tr.DeviceErrors(), tr.Reconnects())
	}
}

func TestTrackerIgnoresEmptyKey(t *testing.T) {
	tr := NewTracker()
	tr.IncrementIngest("")
	tr.IncrementIngest("  ")
	if counts := tr.GetIngestCounts(); len(counts) != 0 {
		t.Fatalf("blank origins must not be counted: %v", counts)
	}
}

func TestSnapshotLines(t *testing.T) {
	tr := NewTracker()
	tr.IncrementIngest("udp")
	tr.IncrementIngest("file")
	tr.IncrementState("promoted")
	tr.IncrementFrames()

	lines := tr.SnapshotLines()
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	// Origins sort alphabetically for stable output.
	if !strings.Contains(lines[0], "file=1, udp=1") {
		t.Fatalf("ingest line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "promoted=1") {
		t.Fatalf("state line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "written=1") {
		t.Fatalf("frames line = %q", lines[2])
	}
}

func TestSnapshotLinesEmpty(t *testing.T) {
	tr := NewTracker()
	lines := tr.SnapshotLines()
	if !strings.Contains(lines[0], "(none)") {
		t.Fatalf("empty ingest line = %q", lines[0])
	}
}

func TestUptimeAdvances(t *testing.T) {
	tr := NewTracker()
	if tr.GetUptime() < 0 {
		t.Fatalf("uptime must not be negative")
	}
}
