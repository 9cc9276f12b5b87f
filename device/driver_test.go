package device

import (
	"errors"
	"sync"
	"testing"
	"time"

	"vfdd/frame"
)

type fakeTransport struct {
	mu         sync.Mutex
	failOpens  int
	failWrites int
	opens      int
	closes     int
	open       bool
	writes     [][]byte
}

func (f *fakeTransport) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.failOpens > 0 {
		f.failOpens--
		return errors.New("open failed")
	}
	f.open = true
	return nil
}

func (f *fakeTransport) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrNotOpen
	}
	if f.failWrites > 0 {
		f.failWrites--
		return errors.New("write failed")
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	f.writes = append(f.writes, buf)
	return nil
}

func (f *fakeTransport) Flush() error { return nil }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.open = false
	return nil
}

func (f *fakeTransport) stats() (opens, closes, writes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens, f.closes, len(f.writes)
}

func (f *fakeTransport) write(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[i]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func testPayload(time.Time) []byte {
	return frame.Render(frame.Frame{Line1: "HELLO", Line2: "WORLD"}, frame.AlignLeft)
}

func testOptions() Options {
	return Options{Tick: 2 * time.Millisecond, RetryDelay: 2 * time.Millisecond}
}

func TestDriverWritesFrames(t *testing.T) {
	ft := &fakeTransport{}
	d := New(ft, testPayload, testOptions())
	d.Start()
	defer d.Stop()

	waitFor(t, func() bool { _, _, w := ft.stats(); return w >= 3 })

	buf := ft.write(0)
	if len(buf) != 2+2*frame.FieldWidth {
		t.Fatalf("frame length = %d, want %d", len(buf), 2+2*frame.FieldWidth)
	}
	if buf[0] != 0xFE || buf[1] != 0x48 {
		t.Fatalf("frame must start with the cursor-home command, got % X", buf[:2])
	}
	if string(buf[2:7]) != "HELLO" {
		t.Fatalf("line 1 content wrong: %q", buf[2:])
	}
}

func TestDriverReconnectsAfterWriteFailure(t *testing.T) {
	ft := &fakeTransport{failWrites: 1}
	var reconnects int
	var mu sync.Mutex
	opts := testOptions()
	opts.OnReconnect = func() {
		mu.Lock()
		reconnects++
		mu.Unlock()
	}
	d := New(ft, testPayload, opts)
	d.Start()
	defer d.Stop()

	waitFor(t, func() bool {
		opens, closes, writes := ft.stats()
		return opens >= 2 && closes >= 1 && writes >= 1
	})

	mu.Lock()
	defer mu.Unlock()
	if reconnects < 1 {
		t.Fatalf("expected at least one reconnect cycle, got %d", reconnects)
	}
}

func TestDriverRetriesFailedOpenUnbounded(t *testing.T) {
	ft := &fakeTransport{failOpens: 3}
	d := New(ft, testPayload, testOptions())
	d.Start()
	defer d.Stop()

	// Initial open plus three failing retries precede the first write.
	waitFor(t, func() bool {
		opens, _, writes := ft.stats()
		return opens >= 4 && writes >= 1
	})
}

func TestDriverStopTerminatesLoop(t *testing.T) {
	ft := &fakeTransport{}
	d := New(ft, testPayload, testOptions())
	d.Start()
	waitFor(t, func() bool { _, _, w := ft.stats(); return w >= 1 })
	d.Stop()

	_, _, before := ft.stats()
	time.Sleep(10 * time.Millisecond)
	_, _, after := ft.stats()
	if after != before {
		t.Fatalf("writes continued after Stop: %d -> %d", before, after)
	}
}
