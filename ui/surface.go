// Package ui provides the optional console monitor: a live mirror of
// the physical display plus stats and the log tail.
package ui

import "io"

// Surface abstracts the monitor so the daemon can run headless.
// Implementations must be safe for concurrent calls from the output
// loop and listeners.
type Surface interface {
	WaitReady()
	Stop()
	SetFrame(line1, line2, state string)
	SetStats(lines []string)
	SystemWriter() io.Writer
}
