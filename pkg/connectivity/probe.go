package connectivity

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// Probe timing defaults.
const (
	// DefaultProbeInterval is how often an attached link is re-probed.
	DefaultProbeInterval = 5 * time.Second

	// DefaultProbeTimeout bounds a single probe dial.
	DefaultProbeTimeout = 2 * time.Second
)

// ProbeNetwork implements the Network capability by dialing a TCP
// target. Attachment means the target is reachable; loss is detected
// by periodic re-probing. It stands in for the firmware-level link
// watcher when ledd runs as an ordinary daemon.
type ProbeNetwork struct {
	// Target is the host:port to probe, typically the telemetry broker.
	Target string

	// Interval between liveness probes (default: DefaultProbeInterval).
	Interval time.Duration

	// Timeout for a single probe dial (default: DefaultProbeTimeout).
	Timeout time.Duration
}

// Attach probes the target until it is reachable. The local address of
// the successful probe becomes the lease address.
func (p *ProbeNetwork) Attach(ctx context.Context) (Lease, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}

	for {
		if addr, ok := p.probe(ctx); ok {
			return Lease{Addr: addr, AcquiredAt: time.Now()}, nil
		}
		select {
		case <-ctx.Done():
			return Lease{}, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// AwaitLoss re-probes the target periodically and returns nil on the
// first failed probe.
func (p *ProbeNetwork) AwaitLoss(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultProbeInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, ok := p.probe(ctx); !ok {
				return nil
			}
		}
	}
}

// probe dials the target once.
func (p *ProbeNetwork) probe(ctx context.Context) (netip.Addr, bool) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", p.Target)
	if err != nil {
		return netip.Addr{}, false
	}
	defer conn.Close()

	if tcpAddr, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		if addr, ok := netip.AddrFromSlice(tcpAddr.IP); ok {
			return addr.Unmap(), true
		}
	}
	return netip.Addr{}, true
}

// Compile-time interface satisfaction check.
var _ Network = (*ProbeNetwork)(nil)
