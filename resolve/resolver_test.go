package resolve

import (
	"testing"
	"time"

	"vfdd/frame"
	"vfdd/inbox"
	"vfdd/screen"
)

type fakeScreen struct {
	name string
	f    frame.Frame
	ok   bool
}

func (s fakeScreen) Name() string { return s.name }

func (s fakeScreen) Frame(time.Time) (frame.Frame, bool) { return s.f, s.ok }

func newTestResolver(static *frame.Frame, exclusive bool, store *inbox.Store, screens ...screen.Provider) *Resolver {
	fallback := fakeScreen{name: "fallback", f: frame.Frame{Line1: "FALLBACK"}, ok: true}
	return New(Config{
		Static:    static,
		Exclusive: exclusive,
		Interval:  30 * time.Second,
		Inbox:     store,
		Screens:   screen.NewRegistry(screens...),
		Fallback:  fallback,
	})
}

var t0 = time.Unix(1_700_000_100, 0)

func TestStaticOverrideWinsForever(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	static := &frame.Frame{Line1: "HELLO", Line2: "WORLD"}
	r := newTestResolver(static, false, store,
		fakeScreen{name: "s1", f: frame.Frame{Line1: "S1"}, ok: true})

	store.Set(frame.Frame{Line1: "PUSHED"}, "udp", t0)

	for _, now := range []time.Time{t0, t0.Add(time.Second), t0.Add(48 * time.Hour)} {
		f, state := r.Resolve(now)
		if state != StateStatic || f.Line1 != "HELLO" || f.Line2 != "WORLD" {
			t.Fatalf("at %v got %v %q/%q, want static HELLO/WORLD", now, state, f.Line1, f.Line2)
		}
	}
}

func TestPromotedContentPreemptsRotation(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	r := newTestResolver(nil, false, store,
		fakeScreen{name: "s1", f: frame.Frame{Line1: "S1"}, ok: true},
		fakeScreen{name: "s2", f: frame.Frame{Line1: "S2"}, ok: true})

	store.Set(frame.Frame{Line1: "A", Line2: "B"}, "udp", t0)

	for offset := time.Duration(0); offset < 30*time.Second; offset += 7 * time.Second {
		f, state := r.Resolve(t0.Add(offset))
		if state != StatePromoted || f.Line1 != "A" || f.Line2 != "B" {
			t.Fatalf("at +%v got %v %q/%q, want promoted A/B", offset, state, f.Line1, f.Line2)
		}
	}

	if _, state := r.Resolve(t0.Add(30 * time.Second)); state != StateRotation {
		t.Fatalf("after promotion window, state = %v, want rotation", state)
	}
}

func TestPromotedSelectedEvenWithNoOtherSource(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	r := newTestResolver(nil, false, store)

	store.Set(frame.Frame{Line1: "A"}, "udp", t0)

	f, state := r.Resolve(t0.Add(10 * time.Second))
	if state != StatePromoted || f.Line1 != "A" {
		t.Fatalf("got %v %q, want promoted A", state, f.Line1)
	}
}

func TestExclusiveModeNeverShowsBuiltins(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	r := newTestResolver(nil, true, store,
		fakeScreen{name: "s1", f: frame.Frame{Line1: "S1"}, ok: true})

	f, state := r.Resolve(t0)
	if state != StateExclusive || !f.Empty() {
		t.Fatalf("got %v %q/%q, want exclusive blank", state, f.Line1, f.Line2)
	}

	store.Set(frame.Frame{Line1: "MSG"}, "udp", t0)
	f, state = r.Resolve(t0.Add(31 * time.Second))
	if state != StateExclusive || f.Line1 != "MSG" {
		t.Fatalf("got %v %q, want exclusive MSG after promotion lapsed", state, f.Line1)
	}
}

func TestRotationDeterminism(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	screens := []screen.Provider{
		fakeScreen{name: "s0", f: frame.Frame{Line1: "S0"}, ok: true},
		fakeScreen{name: "s1", f: frame.Frame{Line1: "S1"}, ok: true},
		fakeScreen{name: "s2", f: frame.Frame{Line1: "S2"}, ok: true},
	}
	r := newTestResolver(nil, false, store, screens...)

	want := []string{"S0", "S1", "S2"}
	for _, unix := range []int64{0, 15, 30, 59, 60, 90, 3600} {
		now := time.Unix(unix, 0)
		idx := int((unix / 30) % 3)
		f1, state := r.Resolve(now)
		f2, _ := r.Resolve(now)
		if state != StateRotation {
			t.Fatalf("at t=%d state = %v, want rotation", unix, state)
		}
		if f1.Line1 != want[idx] {
			t.Fatalf("at t=%d got %q, want %q", unix, f1.Line1, want[idx])
		}
		if f1 != f2 {
			t.Fatalf("two evaluations at t=%d disagree: %q vs %q", unix, f1.Line1, f2.Line1)
		}
	}
}

func TestRotationSkipsProvidersWithoutContent(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	r := newTestResolver(nil, false, store,
		fakeScreen{name: "empty", ok: false},
		fakeScreen{name: "s1", f: frame.Frame{Line1: "S1"}, ok: true})

	for _, unix := range []int64{0, 30, 60, 300} {
		f, state := r.Resolve(time.Unix(unix, 0))
		if state != StateRotation || f.Line1 != "S1" {
			t.Fatalf("at t=%d got %v %q, want rotation S1", unix, state, f.Line1)
		}
	}
}

func TestFallbackWhenNothingActive(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	r := newTestResolver(nil, false, store,
		fakeScreen{name: "empty", ok: false})

	f, state := r.Resolve(t0)
	if state != StateFallback || f.Line1 != "FALLBACK" {
		t.Fatalf("got %v %q, want fallback", state, f.Line1)
	}
}

func TestSingleScreenAlwaysSelected(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	r := newTestResolver(nil, false, store,
		fakeScreen{name: "only", f: frame.Frame{Line1: "ONLY"}, ok: true})

	for _, unix := range []int64{1, 31, 61, 7200} {
		f, state := r.Resolve(time.Unix(unix, 0))
		if state != StateRotation || f.Line1 != "ONLY" {
			t.Fatalf("at t=%d got %v %q, want the single screen", unix, state, f.Line1)
		}
	}
}

// Pushed content joins normal rotation via the inbox once its promotion
// window has elapsed: with two built-in screens and a valid record the
// active set has three members.
func TestPushedContentJoinsRotationAfterPromotion(t *testing.T) {
	store := inbox.NewStore(0, 30*time.Second)
	s1 := fakeScreen{name: "s1", f: frame.Frame{Line1: "S1"}, ok: true}
	s2 := fakeScreen{name: "s2", f: frame.Frame{Line1: "S2"}, ok: true}
	fallback := fakeScreen{name: "fallback", f: frame.Frame{Line1: "FALLBACK"}, ok: true}
	r := New(Config{
		Interval: 30 * time.Second,
		Inbox:    store,
		Screens:  screen.NewRegistry(s1, s2, store),
		Fallback: fallback,
	})

	ingestAt := time.Unix(0, 0)
	store.Set(frame.Frame{Line1: "A", Line2: "B"}, "udp", ingestAt)

	if f, state := r.Resolve(time.Unix(29, 0)); state != StatePromoted || f.Line1 != "A" {
		t.Fatalf("got %v %q, want promoted A before window close", state, f.Line1)
	}

	want := []string{"S1", "S2", "A"}
	for _, unix := range []int64{30, 60, 90, 120} {
		f, state := r.Resolve(time.Unix(unix, 0))
		if state != StateRotation {
			t.Fatalf("at t=%d state = %v, want rotation", unix, state)
		}
		idx := int((unix / 30) % 3)
		if f.Line1 != want[idx] {
			t.Fatalf("at t=%d got %q, want %q", unix, f.Line1, want[idx])
		}
	}
}
