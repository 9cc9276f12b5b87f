package ui

import (
	"sync"
	"time"

	"github.com/rivo/tview"
)

// updateScheduler coalesces pane updates and caps the draw rate. Only
// the newest update per pane id survives a flush window.
type updateScheduler struct {
	app       *tview.Application
	mu        sync.Mutex
	pending   map[string]func()
	frameTime time.Duration
	quit      chan struct{}
	done      chan struct{}
}

func newUpdateScheduler(app *tview.Application, targetFPS int) *updateScheduler {
	if targetFPS <= 0 {
		targetFPS = 10
	}
	return &updateScheduler{
		app:       app,
		pending:   make(map[string]func()),
		frameTime: time.Second / time.Duration(targetFPS),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *updateScheduler) Start() {
	go s.run()
}

func (s *updateScheduler) Stop() {
	close(s.quit)
	select {
	case <-s.done:
	case <-time.After(100 * time.Millisecond):
	}
}

// Schedule queues an update for a pane, replacing any queued one.
func (s *updateScheduler) Schedule(id string, fn func()) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.pending[id] = fn
	s.mu.Unlock()
}

func (s *updateScheduler) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.frameTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.quit:
			return
		}
	}
}

func (s *updateScheduler) flush() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := make([]func(), 0, len(s.pending))
	for _, fn := range s.pending {
		batch = append(batch, fn)
	}
	for key := range s.pending {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	s.app.QueueUpdateDraw(func() {
		for _, fn := range batch {
			fn()
		}
	})
}
