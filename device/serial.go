package device

import (
	"time"

	"go.bug.st/serial"
)

const serialReadTimeout = time.Second

// serialTransport drives the physical display over a serial port.
// Every Open uses identical parameters so a hot-unplugged device comes
// back exactly as it left.
type serialTransport struct {
	path string
	baud int
	port serial.Port
}

// NewSerial creates a transport for the display device at path.
func NewSerial(path string, baud int) Transport {
	if baud <= 0 {
		baud = 9600
	}
	return &serialTransport{path: path, baud: baud}
}

func (t *serialTransport) Open() error {
	port, err := serial.Open(t.path, &serial.Mode{BaudRate: t.baud})
	if err != nil {
		return err
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		_ = port.Close()
		return err
	}
	t.port = port
	return nil
}

func (t *serialTransport) Write(p []byte) error {
	if t.port == nil {
		return ErrNotOpen
	}
	_, err := t.port.Write(p)
	return err
}

func (t *serialTransport) Flush() error {
	if t.port == nil {
		return ErrNotOpen
	}
	return t.port.Drain()
}

func (t *serialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}
