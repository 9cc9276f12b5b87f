package inbox

import (
	"testing"
	"time"

	"vfdd/frame"
)

var base = time.Unix(1_700_000_000, 0)

func TestValidTTLBoundary(t *testing.T) {
	s := NewStore(10*time.Second, 30*time.Second)
	s.Set(frame.Frame{Line1: "A"}, "udp", base)

	if _, ok := s.Valid(base.Add(10 * time.Second)); !ok {
		t.Fatalf("record should be valid at exactly TTL age")
	}
	if _, ok := s.Valid(base.Add(10*time.Second + time.Nanosecond)); ok {
		t.Fatalf("record should be stale past TTL")
	}
}

func TestValidTTLZeroNeverStale(t *testing.T) {
	s := NewStore(0, 30*time.Second)
	s.Set(frame.Frame{Line1: "A"}, "udp", base)

	if _, ok := s.Valid(base.Add(1000 * time.Hour)); !ok {
		t.Fatalf("TTL 0 record should be valid forever")
	}
}

func TestPromotionWindow(t *testing.T) {
	s := NewStore(0, 30*time.Second)
	s.Set(frame.Frame{Line1: "A", Line2: "B"}, "udp", base)

	if _, ok := s.Promoted(base); !ok {
		t.Fatalf("record should be promoted at ingest time")
	}
	if _, ok := s.Promoted(base.Add(30*time.Second - time.Millisecond)); !ok {
		t.Fatalf("record should be promoted just before the window closes")
	}
	if _, ok := s.Promoted(base.Add(30 * time.Second)); ok {
		t.Fatalf("promotion should clear once the window elapses")
	}
	// Still eligible for rotation afterwards.
	if _, ok := s.Frame(base.Add(30 * time.Second)); !ok {
		t.Fatalf("record should remain a rotation candidate after promotion ends")
	}
}

func TestPromotionRequiresFreshness(t *testing.T) {
	s := NewStore(5*time.Second, 30*time.Second)
	s.Set(frame.Frame{Line1: "A"}, "udp", base)

	if _, ok := s.Promoted(base.Add(6 * time.Second)); ok {
		t.Fatalf("a stale record must not stay promoted")
	}
}

func TestLatestWins(t *testing.T) {
	s := NewStore(0, 30*time.Second)
	s.Set(frame.Frame{Line1: "OLD"}, "udp", base)
	s.Set(frame.Frame{Line1: "NEW"}, "mqtt", base.Add(time.Second))

	rec, ok := s.Latest()
	if !ok || rec.Frame.Line1 != "NEW" || rec.Origin != "mqtt" {
		t.Fatalf("latest record = %+v, want NEW/mqtt", rec)
	}
}

func TestRefreshOnlyMatchingOrigin(t *testing.T) {
	s := NewStore(60*time.Second, 30*time.Second)
	s.Set(frame.Frame{Line1: "A"}, "file", base)

	if s.Refresh("udp", base.Add(time.Second)) {
		t.Fatalf("refresh must not apply to a record from a different origin")
	}
	if !s.Refresh("file", base.Add(10*time.Second)) {
		t.Fatalf("refresh should apply to the owning origin")
	}

	rec, _ := s.Latest()
	if !rec.ReceivedAt.Equal(base.Add(10 * time.Second)) {
		t.Fatalf("ReceivedAt not refreshed: %v", rec.ReceivedAt)
	}
	if !rec.ShowUntil.Equal(base.Add(30 * time.Second)) {
		t.Fatalf("refresh must not re-promote; ShowUntil = %v", rec.ShowUntil)
	}
}

func TestEmptyStore(t *testing.T) {
	s := NewStore(0, 30*time.Second)
	if _, ok := s.Latest(); ok {
		t.Fatalf("empty store should have no record")
	}
	if _, ok := s.Valid(base); ok {
		t.Fatalf("empty store should have no valid record")
	}
	if _, ok := s.Promoted(base); ok {
		t.Fatalf("empty store should have no promoted record")
	}
	if _, ok := s.Frame(base); ok {
		t.Fatalf("empty store should yield no rotation content")
	}
}
