package log

import (
	"time"
)

// Event represents a structured log event captured by any component.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time

	// Component that emitted the event.
	Component Component

	// Category classifies the event type.
	Category Category

	// ConnectionID identifies the client connection, if any (UUID).
	ConnectionID string

	// RemoteAddr is the peer address (IP:port), if any.
	RemoteAddr string

	// Type-specific payload (exactly one of these is set).
	StateChange *StateChangeEvent
	Message     *MessageEvent
	Error       *ErrorEventData
}

// Component identifies the emitting component.
type Component uint8

const (
	// ComponentLED is the color state authority.
	ComponentLED Component = 0
	// ComponentConnectivity is the network attachment supervisor.
	ComponentConnectivity Component = 1
	// ComponentTelemetry is the telemetry publisher.
	ComponentTelemetry Component = 2
	// ComponentCommand is the command server pool.
	ComponentCommand Component = 3
	// ComponentDiscovery is the mDNS responder.
	ComponentDiscovery Component = 4
	// ComponentTransport is the framing/transport layer.
	ComponentTransport Component = 5
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentLED:
		return "LED"
	case ComponentConnectivity:
		return "CONNECTIVITY"
	case ComponentTelemetry:
		return "TELEMETRY"
	case ComponentCommand:
		return "COMMAND"
	case ComponentDiscovery:
		return "DISCOVERY"
	case ComponentTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a state change.
	CategoryState Category = 0
	// CategoryMessage indicates a protocol or telemetry message.
	CategoryMessage Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates message flow relative to the local endpoint.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent describes a component state transition.
type StateChangeEvent struct {
	// Entity names the state that changed (e.g. "color", "link").
	Entity string

	// OldState is the previous state (may be empty at startup).
	OldState string

	// NewState is the state after the transition.
	NewState string

	// Reason optionally explains the transition.
	Reason string
}

// MessageEvent summarizes a protocol or telemetry message.
type MessageEvent struct {
	// Direction of the message.
	Direction Direction

	// Kind names the message type (e.g. "set_color", "status").
	Kind string

	// Topic is the telemetry topic, if applicable.
	Topic string

	// Size is the encoded payload size in bytes.
	Size int
}

// ErrorEventData describes an error event.
type ErrorEventData struct {
	// Message is the error text.
	Message string

	// Context describes what the component was doing.
	Context string
}
