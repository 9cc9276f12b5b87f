package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vfdd/config"
)

const (
	logTimestampLayout = "2006/01/02 15:04:05"
	logFileDateLayout  = "02-Jan-2006"
	maxLogBufferBytes  = 16 * 1024
)

type logSink interface {
	WriteLine(line string, now time.Time)
	Close() error
}

type writerSink struct {
	w             io.Writer
	withTimestamp bool
}

func (s *writerSink) WriteLine(line string, now time.Time) {
	if s == nil || s.w == nil {
		return
	}
	if s.withTimestamp {
		line = now.UTC().Format(logTimestampLayout) + " " + line
	}
	_, _ = io.WriteString(s.w, line+"\n")
}

func (s *writerSink) Close() error {
	return nil
}

// dailyLogFile appends timestamped lines to a date-named file, rotating
// on day change and pruning files past the retention window.
type dailyLogFile struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	currentDate   string
	file          *os.File
	lastErrorAt   time.Time
}

func newDailyLogFile(dir string, retentionDays int) (*dailyLogFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, fmt.Errorf("log directory is empty")
	}
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if err := os.MkdirAll(trimmed, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", trimmed, err)
	}
	if err := cleanupOldLogs(trimmed, time.Now().UTC(), retentionDays); err != nil {
		fmt.Fprintf(os.Stderr, "Logging: cleanup failed for %s: %v\n", trimmed, err)
	}
	return &dailyLogFile{dir: trimmed, retentionDays: retentionDays}, nil
}

func (s *dailyLogFile) WriteLine(line string, now time.Time) {
	if s == nil {
		return
	}
	now = now.UTC()
	date := now.Format(logFileDateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil || s.currentDate != date {
		s.rotateLocked(date, now)
	}
	if s.file == nil {
		return
	}
	if _, err := s.file.WriteString(now.Format(logTimestampLayout) + " " + line + "\n"); err != nil {
		s.reportErrorLocked(now, fmt.Errorf("write failed: %w", err))
	}
}

func (s *dailyLogFile) rotateLocked(date string, now time.Time) {
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	path := filepath.Join(s.dir, now.Format(logFileDateLayout)+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		s.reportErrorLocked(now, fmt.Errorf("open failed for %s: %w", path, err))
		return
	}
	s.file = file
	s.currentDate = date
	if err := cleanupOldLogs(s.dir, now, s.retentionDays); err != nil {
		s.reportErrorLocked(now, fmt.Errorf("cleanup failed: %w", err))
	}
}

func (s *dailyLogFile) reportErrorLocked(now time.Time, err error) {
	if err == nil {
		return
	}
	if !s.lastErrorAt.IsZero() && now.Sub(s.lastErrorAt) < time.Minute {
		return
	}
	s.lastErrorAt = now
	fmt.Fprintf(os.Stderr, "Logging: %v\n", err)
}

func (s *dailyLogFile) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.currentDate = ""
	return err
}

// logRouter fans stdlib log output to a console sink (stdout or the
// monitor) and an optional daily file sink. Line-buffered with a
// bounded internal buffer.
type logRouter struct {
	mu      sync.Mutex
	buf     []byte
	console logSink
	file    logSink
}

// setupLogging wires logging per config without blocking startup; a
// failed file sink still leaves console logging working.
func setupLogging(cfg config.LoggingConfig, console io.Writer) (*logRouter, error) {
	router := &logRouter{console: &writerSink{w: console, withTimestamp: true}}
	if !cfg.Enabled {
		return router, nil
	}
	fileSink, err := newDailyLogFile(cfg.Dir, cfg.RetentionDays)
	if err != nil {
		return router, err
	}
	router.file = fileSink
	return router, nil
}

// SetConsoleSink swaps the console sink, e.g. to the monitor's writer.
func (r *logRouter) SetConsoleSink(writer io.Writer, withTimestamp bool) {
	if r == nil {
		return
	}
	var sink logSink
	if writer != nil {
		sink = &writerSink{w: writer, withTimestamp: withTimestamp}
	}
	r.mu.Lock()
	r.console = sink
	r.mu.Unlock()
}

func (r *logRouter) Write(p []byte) (int, error) {
	if r == nil {
		return len(p), nil
	}
	r.mu.Lock()
	r.buf = append(r.buf, p...)
	data := r.buf
	var lines []string
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(data[:idx], "\r")))
		data = data[idx+1:]
	}
	if len(data) > maxLogBufferBytes {
		if trimmed := string(bytes.TrimRight(data, "\r")); trimmed != "" {
			lines = append(lines, trimmed)
		}
		data = data[:0]
	}
	r.buf = data
	console := r.console
	file := r.file
	r.mu.Unlock()

	now := time.Now().UTC()
	for _, line := range lines {
		if console != nil {
			console.WriteLine(line, now)
		}
		if file != nil {
			file.WriteLine(line, now)
		}
	}
	return len(p), nil
}

func (r *logRouter) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	console := r.console
	file := r.file
	r.mu.Unlock()

	var firstErr error
	if console != nil {
		_ = console.Close()
	}
	if file != nil {
		if err := file.Close(); err != nil {
			firstErr = err
		}
	}
	return firstErr
}

func cleanupOldLogs(dir string, now time.Time, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	year, month, day := now.UTC().Date()
	cutoff := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(retentionDays - 1))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".log")
		date, err := time.ParseInLocation(logFileDateLayout, base, time.UTC)
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}
