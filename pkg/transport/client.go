package transport

import (
	"fmt"
	"net"
	"time"
)

// DefaultDialTimeout bounds client connection attempts.
const DefaultDialTimeout = 5 * time.Second

// Dial connects to a command server. The returned connection is raw;
// wrap it in a Framer for message exchange.
func Dial(addr string) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, DefaultDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}
