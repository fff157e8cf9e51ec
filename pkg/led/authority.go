package led

import (
	"context"
	"time"

	"github.com/ledlink/ledd-go/pkg/bus"
	"github.com/ledlink/ledd-go/pkg/log"
)

// DefaultTickInterval is the auto-rotation period.
const DefaultTickInterval = 1 * time.Second

// AuthorityConfig configures the color state authority.
type AuthorityConfig struct {
	// TickInterval is the auto-rotation period (default: 1s).
	TickInterval time.Duration

	// Brightness is the channel value for hue-to-RGB mapping
	// (default: DefaultBrightness).
	Brightness uint8

	// Initial is the boot state (default: DefaultState).
	Initial *State

	// Logger for state-change and error events (optional).
	Logger log.Logger
}

// Authority owns the indicator's logical state. It is the single
// consumer of the command queue and the single publisher on the
// broadcast bus, so ticks and commands are serialized and no race on
// the state is possible.
type Authority struct {
	writer   Writer
	queue    *bus.Queue[Command]
	states   *bus.Bus[State]
	logger   log.Logger
	interval time.Duration
	bright   uint8

	state        State
	writePending bool
}

// NewAuthority creates the authority. The writer is the injected
// physical write capability; queue and states are the shared
// primitives.
func NewAuthority(writer Writer, queue *bus.Queue[Command], states *bus.Bus[State], cfg AuthorityConfig) *Authority {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Brightness == 0 {
		cfg.Brightness = DefaultBrightness
	}
	var logger log.Logger = log.NoopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	initial := DefaultState()
	if cfg.Initial != nil {
		initial = *cfg.Initial
	}

	return &Authority{
		writer:   writer,
		queue:    queue,
		states:   states,
		logger:   logger,
		interval: cfg.TickInterval,
		bright:   cfg.Brightness,
		state:    initial,
	}
}

// State returns the current logical state. Safe only before Run or
// from within the authority's own goroutine; other components must
// observe state via the bus.
func (a *Authority) State() State {
	return a.state
}

// Run drives the control loop until the context is done. In normal
// operation the context never fires; the authority runs for the
// process lifetime.
//
// The boot state is actuated and published once on entry, so the bus
// carries a value before the first tick.
func (a *Authority) Run(ctx context.Context) {
	a.actuate()
	a.publish(State{}, a.state, "boot")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			a.handleTick()

		case cmd := <-a.queue.C():
			a.handleCommand(cmd)
		}
	}
}

// handleTick advances the rotation in auto mode and retries any failed
// write in manual mode.
func (a *Authority) handleTick() {
	if a.state.Mode == ModeAuto {
		old := a.state
		a.state.Hue = a.state.Hue.Next()
		a.actuate()
		a.publish(old, a.state, "tick")
		return
	}

	// Manual tick: state unchanged, nothing to publish. Retry the
	// physical write if the last one failed.
	if a.writePending {
		a.actuate()
	}
}

// handleCommand applies a command. A rejected command (SetColor in
// auto mode, or a no-op mode switch) leaves the state untouched and
// publishes nothing.
func (a *Authority) handleCommand(cmd Command) {
	old := a.state
	next := Transition(a.state, cmd)
	if next == old {
		a.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentLED,
			Category:  log.CategoryMessage,
			Message:   &log.MessageEvent{Direction: log.DirectionIn, Kind: cmd.String() + " (ignored)"},
		})
		return
	}

	a.state = next
	a.actuate()
	a.publish(old, next, cmd.String())
}

// actuate writes the current hue's color to the physical indicator.
// A failed write is remembered and retried on the next tick; it never
// rolls back the logical state.
func (a *Authority) actuate() {
	err := a.writer.Write(a.state.Hue.Color(a.bright))
	a.writePending = err != nil
	if err != nil {
		a.logger.Log(log.Event{
			Timestamp: time.Now(),
			Component: log.ComponentLED,
			Category:  log.CategoryError,
			Error:     &log.ErrorEventData{Message: err.Error(), Context: "actuating indicator"},
		})
	}
}

// publish broadcasts the new state. Called exactly once per
// transition.
func (a *Authority) publish(old, next State, reason string) {
	a.states.Publish(next)
	a.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentLED,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   "color",
			OldState: old.Hue.String() + "/" + old.Mode.String(),
			NewState: next.Hue.String() + "/" + next.Mode.String(),
			Reason:   reason,
		},
	})
}
