package wire

import (
	"errors"
	"fmt"

	"github.com/ledlink/ledd-go/pkg/led"
)

// Decode errors. All of them translate to a rejection response on the
// session, never a dropped connection.
var (
	// ErrUnknownMessageType indicates an unrecognized client verb.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrMissingColor indicates a set_color without a color field.
	ErrMissingColor = errors.New("set_color requires a color")

	// ErrMissingMode indicates a set_mode without a mode field.
	ErrMissingMode = errors.New("set_mode requires a mode")
)

// MessageType tags client messages.
type MessageType uint8

const (
	// MessageTypeSetColor requests a specific hue.
	MessageTypeSetColor MessageType = 1
	// MessageTypeSetMode switches between auto and manual.
	MessageTypeSetMode MessageType = 2
)

// String returns the wire verb name.
func (t MessageType) String() string {
	switch t {
	case MessageTypeSetColor:
		return "set_color"
	case MessageTypeSetMode:
		return "set_mode"
	default:
		return "unknown"
	}
}

// ClientMessage is a command sent by a remote client.
type ClientMessage struct {
	// Type is the verb.
	Type MessageType `cbor:"1,keyasint"`

	// Color is the hue name for set_color ("red", "green", "blue").
	Color string `cbor:"2,keyasint,omitempty"`

	// Mode is the mode name for set_mode ("auto", "manual").
	Mode string `cbor:"3,keyasint,omitempty"`
}

// Command translates the message into an authority command.
// Returns a typed decode error for malformed messages.
func (m *ClientMessage) Command() (led.Command, error) {
	switch m.Type {
	case MessageTypeSetColor:
		if m.Color == "" {
			return led.Command{}, ErrMissingColor
		}
		hue, err := led.ParseHue(m.Color)
		if err != nil {
			return led.Command{}, fmt.Errorf("set_color: %w", err)
		}
		return led.SetColor(hue), nil

	case MessageTypeSetMode:
		if m.Mode == "" {
			return led.Command{}, ErrMissingMode
		}
		mode, err := led.ParseMode(m.Mode)
		if err != nil {
			return led.Command{}, fmt.Errorf("set_mode: %w", err)
		}
		return led.SetMode(mode), nil

	default:
		return led.Command{}, fmt.Errorf("%w: %d", ErrUnknownMessageType, m.Type)
	}
}

// EncodeClientMessage encodes a client message to CBOR bytes.
func EncodeClientMessage(m *ClientMessage) ([]byte, error) {
	return Marshal(m)
}

// DecodeClientMessage decodes CBOR bytes into a client message.
// Structural CBOR errors and unknown verbs are both decode errors;
// field-level validation happens in Command.
func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	var m ClientMessage
	if err := Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode client message: %w", err)
	}
	if m.Type != MessageTypeSetColor && m.Type != MessageTypeSetMode {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, m.Type)
	}
	return &m, nil
}

// ServerMessageType tags server messages.
type ServerMessageType uint8

const (
	// ServerMessageStatus carries the indicator state.
	ServerMessageStatus ServerMessageType = 1
	// ServerMessageError carries a rejection reason.
	ServerMessageError ServerMessageType = 2
)

// ServerMessage is sent by the device to a connected client.
type ServerMessage struct {
	// Type is the message kind.
	Type ServerMessageType `cbor:"1,keyasint"`

	// Status is set for ServerMessageStatus.
	Status *StatusPayload `cbor:"2,keyasint,omitempty"`

	// Error is set for ServerMessageError.
	Error *ErrorPayload `cbor:"3,keyasint,omitempty"`
}

// StatusPayload renders the indicator state.
type StatusPayload struct {
	// Color is the hue name.
	Color string `cbor:"1,keyasint"`

	// RGB is the actuated color triple.
	RGB [3]uint8 `cbor:"2,keyasint"`

	// Mode is the mode name.
	Mode string `cbor:"3,keyasint"`

	// TimestampMS is the device's millisecond timestamp.
	TimestampMS uint64 `cbor:"4,keyasint"`
}

// ErrorPayload carries a rejection reason.
type ErrorPayload struct {
	// Message is the human-readable reason.
	Message string `cbor:"1,keyasint"`
}

// NewStatus builds a status message for a state.
func NewStatus(state led.State, brightness uint8, timestampMS uint64) *ServerMessage {
	c := state.Hue.Color(brightness)
	return &ServerMessage{
		Type: ServerMessageStatus,
		Status: &StatusPayload{
			Color:       state.Hue.String(),
			RGB:         [3]uint8{c.R, c.G, c.B},
			Mode:        state.Mode.String(),
			TimestampMS: timestampMS,
		},
	}
}

// NewError builds an error message.
func NewError(reason string) *ServerMessage {
	return &ServerMessage{
		Type:  ServerMessageError,
		Error: &ErrorPayload{Message: reason},
	}
}

// EncodeServerMessage encodes a server message to CBOR bytes.
func EncodeServerMessage(m *ServerMessage) ([]byte, error) {
	return Marshal(m)
}

// DecodeServerMessage decodes CBOR bytes into a server message.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	var m ServerMessage
	if err := Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode server message: %w", err)
	}
	return &m, nil
}

// TelemetryFrame is the envelope published to the telemetry broker:
// one topic, one opaque payload.
type TelemetryFrame struct {
	// Topic is the broker topic.
	Topic string `cbor:"1,keyasint"`

	// Payload is the topic value (UTF-8 for the color and mode topics).
	Payload []byte `cbor:"2,keyasint"`
}

// EncodeTelemetryFrame encodes a telemetry envelope to CBOR bytes.
func EncodeTelemetryFrame(f *TelemetryFrame) ([]byte, error) {
	return Marshal(f)
}

// DecodeTelemetryFrame decodes CBOR bytes into a telemetry envelope.
func DecodeTelemetryFrame(data []byte) (*TelemetryFrame, error) {
	var f TelemetryFrame
	if err := Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry frame: %w", err)
	}
	return &f, nil
}
