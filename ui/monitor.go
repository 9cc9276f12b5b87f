package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	monitorFPS     = 10
	maxLogLines    = 200
	stopDrainLimit = time.Second
)

var _ Surface = (*Monitor)(nil)

// Monitor is the tview implementation of Surface. Updates are
// coalesced per pane and flushed at a capped rate so a busy tick loop
// cannot saturate the terminal.
type Monitor struct {
	app      *tview.Application
	display  *tview.TextView
	stats    *tview.TextView
	logView  *tview.TextView
	updates  *updateScheduler
	logLines []string
	logMu    sync.Mutex

	readyOnce sync.Once
	ready     chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewMonitor builds the monitor and starts its event loop.
func NewMonitor() *Monitor {
	m := &Monitor{
		app:   tview.NewApplication(),
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}

	m.display = tview.NewTextView()
	m.display.SetBorder(true)
	m.display.SetTitle(" display ")

	m.stats = tview.NewTextView()
	m.stats.SetBorder(true)
	m.stats.SetTitle(" stats ")

	m.logView = tview.NewTextView()
	m.logView.SetScrollable(true)
	m.logView.SetBorder(true)
	m.logView.SetTitle(" log ")

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(m.display, 4, 0, false).
		AddItem(m.stats, 6, 0, false).
		AddItem(m.logView, 0, 1, true)

	m.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC || event.Rune() == 'q' {
			m.app.Stop()
			return nil
		}
		return event
	})
	m.app.SetAfterDrawFunc(func(tcell.Screen) {
		m.readyOnce.Do(func() { close(m.ready) })
	})
	m.app.SetRoot(flex, true)

	m.updates = newUpdateScheduler(m.app, monitorFPS)
	m.updates.Start()

	go func() {
		defer close(m.done)
		_ = m.app.Run()
	}()
	return m
}

// WaitReady blocks until the first draw completed (or the app exited).
func (m *Monitor) WaitReady() {
	select {
	case <-m.ready:
	case <-m.done:
	}
}

// Stop tears down the monitor and waits briefly for the event loop.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.updates.Stop()
		m.app.Stop()
	})
	select {
	case <-m.done:
	case <-time.After(stopDrainLimit):
	}
}

// Done reports monitor exit (user pressed q / Ctrl-C).
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// SetFrame mirrors the formatted line fields as they go to the device.
func (m *Monitor) SetFrame(line1, line2, state string) {
	m.updates.Schedule("frame", func() {
		m.display.SetText(fmt.Sprintf("|%s|\n|%s|", line1, line2))
		m.display.SetTitle(fmt.Sprintf(" display (%s) ", state))
	})
}

// SetStats replaces the stats pane content.
func (m *Monitor) SetStats(lines []string) {
	text := strings.Join(lines, "\n")
	m.updates.Schedule("stats", func() {
		m.stats.SetText(text)
	})
}

// SystemWriter returns a writer that appends log lines to the log pane.
func (m *Monitor) SystemWriter() io.Writer {
	return &logWriter{monitor: m}
}

func (m *Monitor) appendLog(line string) {
	m.logMu.Lock()
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	text := strings.Join(m.logLines, "\n")
	m.logMu.Unlock()

	m.updates.Schedule("log", func() {
		m.logView.SetText(text)
		m.logView.ScrollToEnd()
	})
}

// logWriter splits writes into lines for the log pane.
type logWriter struct {
	monitor *Monitor
	buf     []byte
	mu      sync.Mutex
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf = append(w.buf, p...)
	var lines []string
	for {
		idx := bytes.IndexByte(w.buf, '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(w.buf[:idx], "\r")))
		w.buf = w.buf[idx+1:]
	}
	w.mu.Unlock()

	for _, line := range lines {
		w.monitor.appendLog(line)
	}
	return len(p), nil
}
