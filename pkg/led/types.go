package led

import (
	"errors"
	"fmt"
)

// ErrWriteFailed indicates the physical indicator could not be
// actuated. The authority logs it and retries on the next tick; it is
// never fatal.
var ErrWriteFailed = errors.New("indicator write failed")

// DefaultBrightness is the channel value used when mapping a hue to an
// RGB color. Dimmed to be easy on the eyes.
const DefaultBrightness uint8 = 10

// Hue is one of the three colors the indicator can show.
type Hue uint8

const (
	// HueRed is the boot color.
	HueRed Hue = iota
	// HueGreen lights the green channel.
	HueGreen
	// HueBlue lights the blue channel.
	HueBlue
)

// String returns the lowercase hue name used on the wire and in
// telemetry payloads.
func (h Hue) String() string {
	switch h {
	case HueRed:
		return "red"
	case HueGreen:
		return "green"
	case HueBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// ParseHue parses a wire-format hue name.
func ParseHue(s string) (Hue, error) {
	switch s {
	case "red":
		return HueRed, nil
	case "green":
		return HueGreen, nil
	case "blue":
		return HueBlue, nil
	default:
		return 0, fmt.Errorf("unknown hue %q", s)
	}
}

// Next returns the hue that follows in the auto-rotation cycle.
// The cycle order red -> blue -> green -> red is a public contract.
func (h Hue) Next() Hue {
	switch h {
	case HueRed:
		return HueBlue
	case HueBlue:
		return HueGreen
	default:
		return HueRed
	}
}

// Color returns the RGB triple for the hue at the given brightness.
// A brightness of 0 falls back to DefaultBrightness.
func (h Hue) Color(brightness uint8) Color {
	if brightness == 0 {
		brightness = DefaultBrightness
	}
	switch h {
	case HueGreen:
		return Color{G: brightness}
	case HueBlue:
		return Color{B: brightness}
	default:
		return Color{R: brightness}
	}
}

// Color is an RGB triple as written to the physical indicator.
type Color struct {
	R, G, B uint8
}

// Mode selects between autonomous rotation and manual control.
type Mode uint8

const (
	// ModeAuto rotates the hue on every tick.
	ModeAuto Mode = iota
	// ModeManual holds the hue until a SetColor command changes it.
	ModeManual
)

// String returns the lowercase mode name used on the wire and in
// telemetry payloads.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	default:
		return "unknown"
	}
}

// ParseMode parses a wire-format mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// State is the indicator's complete logical state.
type State struct {
	Hue  Hue
	Mode Mode
}

// DefaultState is the state at boot: red, auto-rotating.
func DefaultState() State {
	return State{Hue: HueRed, Mode: ModeAuto}
}

// CommandKind tags the command variant.
type CommandKind uint8

const (
	// CommandSetColor requests a specific hue (manual mode only).
	CommandSetColor CommandKind = iota
	// CommandSetMode switches between auto and manual.
	CommandSetMode
)

// Command is a proposed state change. Commands are produced by the
// command server pool, consumed exactly once by the authority, and
// not retained after consumption.
type Command struct {
	Kind CommandKind
	Hue  Hue
	Mode Mode
}

// SetColor builds a command requesting the given hue.
func SetColor(h Hue) Command {
	return Command{Kind: CommandSetColor, Hue: h}
}

// SetMode builds a command switching to the given mode.
func SetMode(m Mode) Command {
	return Command{Kind: CommandSetMode, Mode: m}
}

// String returns a short description for logging.
func (c Command) String() string {
	switch c.Kind {
	case CommandSetColor:
		return "set_color(" + c.Hue.String() + ")"
	case CommandSetMode:
		return "set_mode(" + c.Mode.String() + ")"
	default:
		return "unknown"
	}
}

// Writer is the physical write capability injected into the authority.
// Implementations: a hardware driver, the ANSI console writer, or an
// in-memory double for tests.
type Writer interface {
	// Write actuates the indicator. Returns ErrWriteFailed (possibly
	// wrapped) when the hardware rejects the write.
	Write(color Color) error
}

// Transition applies a command to a state and returns the new state.
// Transitions are total: every (state, command) pair has a defined
// result, and a rejected command returns the state unchanged.
//
//   - SetColor in manual mode sets the hue.
//   - SetColor in auto mode is ignored; switching to manual first is
//     required so ticks and commands cannot race.
//   - SetMode switches the mode immediately.
func Transition(s State, cmd Command) State {
	switch cmd.Kind {
	case CommandSetColor:
		if s.Mode == ModeManual {
			s.Hue = cmd.Hue
		}
	case CommandSetMode:
		s.Mode = cmd.Mode
	}
	return s
}
