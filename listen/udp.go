package listen

import (
	"fmt"
	"log"
	"net"
	"time"

	"vfdd/inbox"
)

// maxDatagram bounds accepted payload size; anything longer than two
// display lines plus slack is noise.
const maxDatagram = 512

// UDPListener receives untrusted frames on a connectionless socket.
// Binds to localhost unless all-interface listening was explicitly
// requested.
type UDPListener struct {
	addr string
	conn net.PacketConn
	in   *ingestor
	quit chan struct{}
	done chan struct{}
}

// NewUDP creates a listener for the given port. Callbacks may be nil.
func NewUDP(port int, bindAll bool, store *inbox.Store, onIngest, onReject func(origin string)) *UDPListener {
	host := "127.0.0.1"
	if bindAll {
		host = "0.0.0.0"
	}
	return &UDPListener{
		addr: net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		in:   newIngestor(store, onIngest, onReject),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start binds the socket and launches the read loop.
func (l *UDPListener) Start() error {
	conn, err := net.ListenPacket("udp", l.addr)
	if err != nil {
		return fmt.Errorf("udp: listen on %s: %w", l.addr, err)
	}
	l.conn = conn
	log.Printf("udp: listening on %s", conn.LocalAddr())
	go l.readLoop()
	return nil
}

// Stop closes the socket and waits for the read loop to drain.
func (l *UDPListener) Stop() {
	close(l.quit)
	if l.conn != nil {
		_ = l.conn.Close()
	}
	<-l.done
}

// Addr returns the bound address, empty before Start.
func (l *UDPListener) Addr() string {
	if l.conn == nil {
		return ""
	}
	return l.conn.LocalAddr().String()
}

func (l *UDPListener) readLoop() {
	defer close(l.done)
	buf := make([]byte, maxDatagram)
	for {
		n, remote, err := l.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-l.quit:
				return
			default:
			}
			log.Printf("udp: read failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		l.in.ingest(payload, OriginUDP, remote.String())
	}
}
