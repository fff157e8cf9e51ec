package telemetry

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ledlink/ledd-go/pkg/transport"
	"github.com/ledlink/ledd-go/pkg/wire"
)

// DefaultDialTimeout bounds broker connection attempts.
const DefaultDialTimeout = 5 * time.Second

// Link delivers one value to one broker topic.
type Link interface {
	Publish(topic string, payload []byte) error
}

// FrameLink publishes telemetry frames to a broker over TCP.
// The connection is established lazily and re-established after a
// publish failure.
type FrameLink struct {
	addr        string
	dialTimeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	framer *transport.Framer
}

// NewFrameLink creates a link to the broker at addr (host:port).
func NewFrameLink(addr string) *FrameLink {
	return &FrameLink{addr: addr, dialTimeout: DefaultDialTimeout}
}

// Publish sends one topic value to the broker.
func (l *FrameLink) Publish(topic string, payload []byte) error {
	data, err := wire.EncodeTelemetryFrame(&wire.TelemetryFrame{
		Topic:   topic,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode telemetry frame: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		conn, err := net.DialTimeout("tcp", l.addr, l.dialTimeout)
		if err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
		l.conn = conn
		l.framer = transport.NewFramer(conn)
	}

	if err := l.framer.WriteFrame(data); err != nil {
		// Stale connection; the next publish redials.
		l.conn.Close()
		l.conn = nil
		l.framer = nil
		return fmt.Errorf("failed to publish to broker: %w", err)
	}
	return nil
}

// Close closes the broker connection, if any.
func (l *FrameLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	l.framer = nil
	return err
}
