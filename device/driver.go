// Package device owns the serial connection and the periodic output
// loop that keeps writing frames to the display despite transient I/O
// failures.
package device

import (
	"log"
	"time"

	"vfdd/frame"
	"vfdd/internal/ratelimit"
)

// The display understands exactly two command bytes: set cursor to the
// start of line one. Everything after is the 2*FieldWidth line payload.
var cmdCursorHome = []byte{0xFE, 0x48}

const (
	defaultTick       = 500 * time.Millisecond
	defaultRetryDelay = 5 * time.Second
	defaultErrLogGap  = 10 * time.Second
)

type connState int

const (
	stateConnected connState = iota
	stateReconnecting
)

// Options tunes the driver. Zero values select the defaults.
type Options struct {
	Tick        time.Duration
	RetryDelay  time.Duration
	ErrLogGap   time.Duration
	OnWrite     func()
	OnError     func()
	OnReconnect func()
}

// Driver is an explicit reconnect state machine around the transport:
// Connected writes one frame per tick; any failure moves to
// Reconnecting, which waits a fixed delay and reopens. Retries are
// unbounded since the device may be hot-unplugged and reattached; the
// process never exits because of it. A failed frame is never retried
// individually, the next tick supersedes it.
type Driver struct {
	transport Transport
	payload   func(now time.Time) []byte

	tick       time.Duration
	retryDelay time.Duration
	errLog     *ratelimit.Counter

	onWrite     func()
	onError     func()
	onReconnect func()

	state connState
	quit  chan struct{}
	done  chan struct{}
}

// New creates a driver. payload must return the full line payload for
// the given tick; the driver prepends the cursor-home command.
func New(transport Transport, payload func(now time.Time) []byte, opts Options) *Driver {
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.ErrLogGap <= 0 {
		opts.ErrLogGap = defaultErrLogGap
	}
	return &Driver{
		transport:   transport,
		payload:     payload,
		tick:        opts.Tick,
		retryDelay:  opts.RetryDelay,
		errLog:      ratelimit.NewCounter(opts.ErrLogGap),
		onWrite:     opts.OnWrite,
		onError:     opts.OnError,
		onReconnect: opts.OnReconnect,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start opens the transport and launches the output loop. A failed
// initial open is not fatal; the loop starts in Reconnecting.
func (d *Driver) Start() {
	if err := d.transport.Open(); err != nil {
		d.logError("open", err)
		d.state = stateReconnecting
	}
	go d.run()
}

// Stop terminates the output loop and closes the transport.
func (d *Driver) Stop() {
	close(d.quit)
	<-d.done
	_ = d.transport.Close()
}

func (d *Driver) run() {
	defer close(d.done)
	for {
		switch d.state {
		case stateReconnecting:
			if !d.sleep(d.retryDelay) {
				return
			}
			if err := d.transport.Open(); err != nil {
				d.logError("open", err)
				continue
			}
			d.state = stateConnected
			log.Printf("device: connection restored")
		case stateConnected:
			if err := d.writeFrame(time.Now()); err != nil {
				d.logError("write", err)
				if d.onError != nil {
					d.onError()
				}
				_ = d.transport.Close()
				d.state = stateReconnecting
				if d.onReconnect != nil {
					d.onReconnect()
				}
				continue
			}
			if d.onWrite != nil {
				d.onWrite()
			}
			if !d.sleep(d.tick) {
				return
			}
		}
	}
}

func (d *Driver) writeFrame(now time.Time) error {
	buf := make([]byte, 0, len(cmdCursorHome)+2*frame.FieldWidth)
	buf = append(buf, cmdCursorHome...)
	buf = append(buf, d.payload(now)...)
	if err := d.transport.Write(buf); err != nil {
		return err
	}
	return d.transport.Flush()
}

// sleep waits for the duration or a stop request; false means stop.
func (d *Driver) sleep(delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-d.quit:
		return false
	}
}

func (d *Driver) logError(op string, err error) {
	if total, ok := d.errLog.Inc(); ok {
		log.Printf("device: %s failed: %v (errors=%d, retry in %s)", op, err, total, d.retryDelay)
	}
}
