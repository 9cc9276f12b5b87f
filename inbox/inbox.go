// Package inbox holds the latest asynchronously pushed frame together
// with the freshness and promotion bookkeeping the resolver reads.
//
// Listeners are the only writers; the resolver and output loop only
// read. The record swaps under one mutex as a single unit so a reader
// never observes new content paired with an old timestamp.
package inbox

import (
	"sync"
	"time"

	"vfdd/frame"
)

// Record is the latest pushed content plus its timing state.
// ReceivedAt drives staleness; ShowUntil drives promotion.
type Record struct {
	Frame      frame.Frame
	Origin     string
	ReceivedAt time.Time
	ShowUntil  time.Time
}

// Store is the single latest-wins slot shared between listeners and
// the resolver. Each inbound message overwrites the previous record;
// only the most recent pushed content is ever meaningful to show.
type Store struct {
	mu        sync.Mutex
	rec       *Record
	ttl       time.Duration // 0 = never stale
	promotion time.Duration
}

// NewStore creates a store with the given freshness TTL and promotion
// window. The promotion window normally equals the rotation interval so
// a freshly arrived message is never skipped by an unlucky rotation
// phase.
func NewStore(ttl, promotion time.Duration) *Store {
	if promotion <= 0 {
		promotion = 30 * time.Second
	}
	return &Store{ttl: ttl, promotion: promotion}
}

// Set installs a new record, stamping its receive time and promotion
// deadline.
func (s *Store) Set(f frame.Frame, origin string, now time.Time) {
	s.mu.Lock()
	s.rec = &Record{
		Frame:      f,
		Origin:     origin,
		ReceivedAt: now,
		ShowUntil:  now.Add(s.promotion),
	}
	s.mu.Unlock()
}

// Refresh bumps ReceivedAt without re-promoting, and only when the
// current record came from the given origin. The file poller uses this
// to keep an unchanged-but-fresh file alive past the TTL.
func (s *Store) Refresh(origin string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil || s.rec.Origin != origin {
		return false
	}
	rec := *s.rec
	rec.ReceivedAt = now
	s.rec = &rec
	return true
}

// Latest returns a copy of the current record, if any.
func (s *Store) Latest() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return Record{}, false
	}
	return *s.rec, true
}

// Valid returns the current record when it is within the freshness TTL.
// A TTL of zero never expires.
func (s *Store) Valid(now time.Time) (Record, bool) {
	rec, ok := s.Latest()
	if !ok {
		return Record{}, false
	}
	if s.ttl > 0 && now.Sub(rec.ReceivedAt) > s.ttl {
		return Record{}, false
	}
	return rec, true
}

// Promoted returns the current record while its promotion window is
// open. Promotion clears purely by time elapsing; staleness still
// applies, so a record cannot be promoted after its TTL has passed.
func (s *Store) Promoted(now time.Time) (Record, bool) {
	rec, ok := s.Valid(now)
	if !ok || !now.Before(rec.ShowUntil) {
		return Record{}, false
	}
	return rec, true
}

// Name implements the rotation provider interface; a valid record
// participates in normal rotation once its promotion window closes.
func (s *Store) Name() string {
	return "pushed"
}

// Frame implements the rotation provider interface.
func (s *Store) Frame(now time.Time) (frame.Frame, bool) {
	rec, ok := s.Valid(now)
	if !ok {
		return frame.Frame{}, false
	}
	return rec.Frame, true
}
