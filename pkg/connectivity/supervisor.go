package connectivity

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"github.com/ledlink/ledd-go/pkg/log"
)

// State is the connectivity lifecycle state.
type State uint8

const (
	// StateDetached is the boot state, before the first attach attempt.
	StateDetached State = iota

	// StateAttaching indicates an attach attempt (or retry) is in progress.
	StateAttaching

	// StateAttached indicates a live link with an acquired address.
	StateAttached

	// StateLost indicates the link was lost; a retry follows after backoff.
	StateLost
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDetached:
		return "DETACHED"
	case StateAttaching:
		return "ATTACHING"
	case StateAttached:
		return "ATTACHED"
	case StateLost:
		return "LOST"
	default:
		return "UNKNOWN"
	}
}

// Lease holds the address information acquired on attach.
type Lease struct {
	// Addr is the local address the link operates from.
	Addr netip.Addr

	// AcquiredAt is when the attachment completed.
	AcquiredAt time.Time
}

// Status is a read-only snapshot of the supervisor's state.
type Status struct {
	// State is the lifecycle state.
	State State

	// Lease is valid only while State is StateAttached.
	Lease Lease
}

// Network is the attachment-lifecycle capability consumed by the
// supervisor, satisfied by the underlying network stack (or a test
// double).
type Network interface {
	// Attach brings the link up and acquires an address. It blocks
	// until attached or the context is done.
	Attach(ctx context.Context) (Lease, error)

	// AwaitLoss blocks until the attachment is lost. A nil return
	// means the link went down; a context error means the caller is
	// shutting down.
	AwaitLoss(ctx context.Context) error
}

// SupervisorConfig configures the supervisor.
type SupervisorConfig struct {
	// Backoff overrides the retry backoff parameters.
	Backoff BackoffConfig

	// Logger for state-change events (optional).
	Logger log.Logger

	// OnStateChange is invoked synchronously on every transition,
	// before dependents waiting on AwaitAttached/AwaitDetached are
	// released (optional).
	OnStateChange func(old, new State)
}

// Supervisor manages the network attachment lifecycle. It has no
// terminal state; Run loops for the process lifetime.
type Supervisor struct {
	network Network
	backoff *Backoff
	logger  log.Logger
	onState func(old, new State)

	mu         sync.Mutex
	status     Status
	attachedCh chan struct{} // closed while attached
	detachedCh chan struct{} // closed while not attached
}

// NewSupervisor creates a supervisor over the given network capability.
func NewSupervisor(network Network, cfg SupervisorConfig) *Supervisor {
	var logger log.Logger = log.NoopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	s := &Supervisor{
		network:    network,
		backoff:    NewBackoffWithConfig(cfg.Backoff),
		logger:     logger,
		onState:    cfg.OnStateChange,
		status:     Status{State: StateDetached},
		attachedCh: make(chan struct{}),
		detachedCh: make(chan struct{}),
	}
	close(s.detachedCh)
	return s
}

// Status returns a snapshot of the current connectivity state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Attached reports whether the link is currently live.
func (s *Supervisor) Attached() bool {
	return s.Status().State == StateAttached
}

// AwaitAttached blocks until the supervisor is attached and returns
// the current lease.
func (s *Supervisor) AwaitAttached(ctx context.Context) (Lease, error) {
	for {
		s.mu.Lock()
		if s.status.State == StateAttached {
			lease := s.status.Lease
			s.mu.Unlock()
			return lease, nil
		}
		ch := s.attachedCh
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Lease{}, ctx.Err()
		case <-ch:
		}
	}
}

// AwaitDetached blocks until the supervisor is not attached. Used by
// dependents that must tear down per-attachment resources.
func (s *Supervisor) AwaitDetached(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.status.State != StateAttached {
			s.mu.Unlock()
			return nil
		}
		ch := s.detachedCh
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Run drives the lifecycle until the context is done. In normal
// operation the context never fires.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		s.setState(StateAttaching, Lease{}, "attach requested")

		lease, err := s.attachWithRetry(ctx)
		if err != nil {
			// Only context cancellation escapes the retry loop.
			return
		}

		s.backoff.Reset()
		s.setState(StateAttached, lease, "address acquired")

		if err := s.network.AwaitLoss(ctx); err != nil {
			return
		}

		// Loss is observed synchronously: dependents see Lost before
		// the next attach attempt begins.
		s.setState(StateLost, Lease{}, "link loss detected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff.Next()):
		}
	}
}

// attachWithRetry attempts to attach until it succeeds, backing off
// between failures. Retries are unbounded.
func (s *Supervisor) attachWithRetry(ctx context.Context) (Lease, error) {
	for {
		lease, err := s.network.Attach(ctx)
		if err == nil {
			return lease, nil
		}
		if ctx.Err() != nil {
			return Lease{}, ctx.Err()
		}

		s.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentConnectivity,
			Category:  log.CategoryError,
			Error:     &log.ErrorEventData{Message: err.Error(), Context: "attaching"},
		})

		select {
		case <-ctx.Done():
			return Lease{}, ctx.Err()
		case <-time.After(s.backoff.Next()):
		}
	}
}

// setState performs a transition and releases waiters.
func (s *Supervisor) setState(state State, lease Lease, reason string) {
	s.mu.Lock()
	old := s.status.State
	if old == state {
		s.mu.Unlock()
		return
	}
	s.status = Status{State: state, Lease: lease}

	if state == StateAttached {
		close(s.attachedCh)
		s.detachedCh = make(chan struct{})
	} else if old == StateAttached {
		close(s.detachedCh)
		s.attachedCh = make(chan struct{})
	}
	s.mu.Unlock()

	if s.onState != nil {
		s.onState(old, state)
	}

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentConnectivity,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   "link",
			OldState: old.String(),
			NewState: state.String(),
			Reason:   reason,
		},
	})
}
