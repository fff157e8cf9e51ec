package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ledlink/ledd-go/pkg/bus"
	"github.com/ledlink/ledd-go/pkg/led"
	"github.com/ledlink/ledd-go/pkg/log"
)

// Default broker topics.
const (
	DefaultColorTopic = "led/color"
	DefaultModeTopic  = "led/mode"
)

// Attachment reports whether the network is attached. The connectivity
// supervisor satisfies this.
type Attachment interface {
	Attached() bool
}

// PublisherConfig configures a telemetry publisher.
type PublisherConfig struct {
	// States is the indicator state bus to mirror.
	States *bus.Bus[led.State]

	// Link delivers values to the broker.
	Link Link

	// Attachment gates publishing; transitions while detached are
	// dropped. If nil, publishing is never gated.
	Attachment Attachment

	// ColorTopic receives hue names (default: "led/color").
	ColorTopic string

	// ModeTopic receives mode names (default: "led/mode").
	ModeTopic string

	// Logger for telemetry logging (optional).
	Logger log.Logger
}

// Publisher mirrors indicator state transitions onto broker topics.
type Publisher struct {
	config PublisherConfig
	sub    *bus.Subscription[led.State]

	// Last successfully published values, per topic. Empty until the
	// first successful publish.
	lastColor string
	lastMode  string
}

// NewPublisher creates a publisher. It subscribes to the state bus
// immediately so no transition published after this call is missed.
func NewPublisher(config PublisherConfig) (*Publisher, error) {
	if config.States == nil {
		return nil, fmt.Errorf("state bus is required")
	}
	if config.Link == nil {
		return nil, fmt.Errorf("link is required")
	}
	if config.ColorTopic == "" {
		config.ColorTopic = DefaultColorTopic
	}
	if config.ModeTopic == "" {
		config.ModeTopic = DefaultModeTopic
	}

	return &Publisher{
		config: config,
		sub:    config.States.Subscribe(),
	}, nil
}

// Run mirrors state transitions until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	defer p.sub.Cancel()

	for {
		state, err := p.sub.Receive(ctx)
		if err != nil {
			return nil
		}
		p.publishState(state)
	}
}

// publishState pushes the changed parts of a state to the broker.
// Values are only remembered after a successful publish, so a dropped
// or failed value is retried on the next transition.
func (p *Publisher) publishState(state led.State) {
	if p.config.Attachment != nil && !p.config.Attachment.Attached() {
		p.logDrop(state)
		return
	}

	color := state.Hue.String()
	if color != p.lastColor {
		if err := p.config.Link.Publish(p.config.ColorTopic, []byte(color)); err != nil {
			p.logError(err, p.config.ColorTopic)
		} else {
			p.lastColor = color
			p.logPublish(p.config.ColorTopic, color)
		}
	}

	mode := state.Mode.String()
	if mode != p.lastMode {
		if err := p.config.Link.Publish(p.config.ModeTopic, []byte(mode)); err != nil {
			p.logError(err, p.config.ModeTopic)
		} else {
			p.lastMode = mode
			p.logPublish(p.config.ModeTopic, mode)
		}
	}
}

func (p *Publisher) logPublish(topic, value string) {
	if p.config.Logger == nil {
		return
	}
	p.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentTelemetry,
		Category:  log.CategoryMessage,
		Message: &log.MessageEvent{
			Direction: log.DirectionOut,
			Kind:      "publish",
			Topic:     topic,
			Size:      len(value),
		},
	})
}

func (p *Publisher) logDrop(state led.State) {
	if p.config.Logger == nil {
		return
	}
	p.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentTelemetry,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   "publish",
			NewState: "DROPPED",
			Reason:   fmt.Sprintf("network not attached (state %s/%s)", state.Hue, state.Mode),
		},
	})
}

func (p *Publisher) logError(err error, topic string) {
	if p.config.Logger == nil {
		return
	}
	p.config.Logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentTelemetry,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: fmt.Sprintf("publish to %s", topic),
		},
	})
}
