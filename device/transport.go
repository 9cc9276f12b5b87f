package device

import "errors"

// ErrNotOpen is returned when a write is attempted on a closed link.
var ErrNotOpen = errors.New("device: transport not open")

// Transport abstracts the serial link so the reconnect state machine
// can be exercised against a fake instead of real hardware. The driver
// is the transport's only user; the connection is never shared.
type Transport interface {
	Open() error
	Write(p []byte) error
	Flush() error
	Close() error
}
