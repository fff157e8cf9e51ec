package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ledlink/ledd-go/pkg/bus"
	"github.com/ledlink/ledd-go/pkg/connectivity"
	"github.com/ledlink/ledd-go/pkg/led"
	"github.com/ledlink/ledd-go/pkg/log"
	"github.com/ledlink/ledd-go/pkg/transport"
	"github.com/ledlink/ledd-go/pkg/wire"
)

// Gate blocks until the network is attached. The connectivity
// supervisor satisfies this.
type Gate interface {
	AwaitAttached(ctx context.Context) (connectivity.Lease, error)
}

// PoolConfig configures a command pool.
type PoolConfig struct {
	// Address to listen on (e.g., ":7420").
	Address string

	// Slots is the number of concurrent session slots.
	Slots int

	// Queue receives decoded client commands.
	Queue *bus.Queue[led.Command]

	// States is the indicator state bus; every published state is
	// pushed to all sessions.
	States *bus.Bus[led.State]

	// Gate, if set, delays serving until the network is attached.
	Gate Gate

	// Brightness used when rendering status RGB values
	// (default: led.DefaultBrightness).
	Brightness uint8

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// Pool serves the command protocol on a fixed number of session slots.
type Pool struct {
	config PoolConfig
	server *transport.Server

	// Per-session state watchers
	watchers map[*transport.ServerConn]context.CancelFunc
	mu       sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a command pool.
func NewPool(config PoolConfig) (*Pool, error) {
	if config.Queue == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if config.States == nil {
		return nil, fmt.Errorf("state bus is required")
	}
	if config.Brightness == 0 {
		config.Brightness = led.DefaultBrightness
	}

	p := &Pool{
		config:   config,
		watchers: make(map[*transport.ServerConn]context.CancelFunc),
	}

	server, err := transport.NewServer(transport.ServerConfig{
		Address:      config.Address,
		Slots:        config.Slots,
		Logger:       config.Logger,
		OnConnect:    p.handleConnect,
		OnDisconnect: p.handleDisconnect,
		OnMessage:    p.handleMessage,
		OnError:      p.handleError,
	})
	if err != nil {
		return nil, err
	}
	p.server = server

	return p, nil
}

// Start begins serving. If a gate is configured, Start blocks until
// the network is attached.
func (p *Pool) Start(ctx context.Context) error {
	if p.config.Gate != nil {
		if _, err := p.config.Gate.AwaitAttached(ctx); err != nil {
			return fmt.Errorf("waiting for network: %w", err)
		}
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	return p.server.Start(p.ctx)
}

// Stop stops serving and closes all sessions.
func (p *Pool) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	err := p.server.Stop()
	p.wg.Wait()
	return err
}

// Addr returns the listen address.
func (p *Pool) Addr() net.Addr {
	return p.server.Addr()
}

// ActiveSessions returns the number of occupied session slots.
func (p *Pool) ActiveSessions() int {
	return p.server.ActiveSessions()
}

// handleConnect starts a state watcher for the new session.
func (p *Pool) handleConnect(conn *transport.ServerConn) {
	watchCtx, cancel := context.WithCancel(p.ctx)

	p.mu.Lock()
	p.watchers[conn] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.watchState(watchCtx, conn)
}

// handleDisconnect stops the session's state watcher.
func (p *Pool) handleDisconnect(conn *transport.ServerConn) {
	p.mu.Lock()
	cancel, ok := p.watchers[conn]
	delete(p.watchers, conn)
	p.mu.Unlock()

	if ok {
		cancel()
	}
}

// watchState pushes the current state on connect, then every
// subsequent state change, to one session.
func (p *Pool) watchState(ctx context.Context, conn *transport.ServerConn) {
	defer p.wg.Done()

	sub := p.config.States.Subscribe()
	defer sub.Cancel()

	// Initial status so a fresh session knows the indicator state
	// without waiting for the next transition.
	if state, ok := p.config.States.Latest(); ok {
		if err := p.sendStatus(conn, state); err != nil {
			return
		}
	}

	for {
		state, err := sub.Receive(ctx)
		if err != nil {
			return
		}
		if err := p.sendStatus(conn, state); err != nil {
			return
		}
	}
}

// handleMessage decodes and enqueues one client command. Malformed
// messages and a full queue produce an error response; the session
// stays open either way.
func (p *Pool) handleMessage(conn *transport.ServerConn, data []byte) {
	msg, err := wire.DecodeClientMessage(data)
	if err != nil {
		p.reject(conn, err)
		return
	}

	cmd, err := msg.Command()
	if err != nil {
		p.reject(conn, err)
		return
	}

	p.logMessage(conn, log.DirectionIn, msg.Type.String(), len(data))

	if err := p.config.Queue.Enqueue(cmd); err != nil {
		if errors.Is(err, bus.ErrQueueFull) {
			p.logError(conn, err, "enqueue command")
		}
		p.reject(conn, err)
		return
	}
}

// handleError logs session read errors. Normal disconnects surface
// here too; the transport already tears the session down.
func (p *Pool) handleError(conn *transport.ServerConn, err error) {
	p.logError(conn, err, "session read")
}

// reject sends an error response on the session.
func (p *Pool) reject(conn *transport.ServerConn, cause error) {
	data, err := wire.EncodeServerMessage(wire.NewError(cause.Error()))
	if err != nil {
		return
	}
	if err := conn.Send(data); err != nil {
		conn.Close()
		return
	}
	p.logMessage(conn, log.DirectionOut, "error", len(data))
}

// sendStatus sends a status message on the session.
func (p *Pool) sendStatus(conn *transport.ServerConn, state led.State) error {
	msg := wire.NewStatus(state, p.config.Brightness, uint64(time.Now().UnixMilli()))
	data, err := wire.EncodeServerMessage(msg)
	if err != nil {
		return err
	}
	if err := conn.Send(data); err != nil {
		conn.Close()
		return err
	}
	p.logMessage(conn, log.DirectionOut, "status", len(data))
	return nil
}

func (p *Pool) logMessage(conn *transport.ServerConn, direction log.Direction, kind string, size int) {
	if p.config.Logger == nil {
		return
	}
	p.config.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		Component:    log.ComponentCommand,
		Category:     log.CategoryMessage,
		ConnectionID: conn.ConnID(),
		RemoteAddr:   conn.RemoteAddr().String(),
		Message: &log.MessageEvent{
			Direction: direction,
			Kind:      kind,
			Size:      size,
		},
	})
}

func (p *Pool) logError(conn *transport.ServerConn, err error, context string) {
	if p.config.Logger == nil {
		return
	}
	event := log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentCommand,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: context,
		},
	}
	if conn != nil {
		event.ConnectionID = conn.ConnID()
		event.RemoteAddr = conn.RemoteAddr().String()
	}
	p.config.Logger.Log(event)
}
