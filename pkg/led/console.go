package led

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleWriter renders the indicator as a 24-bit ANSI color cell.
// It stands in for the hardware driver when running on a development
// machine.
type ConsoleWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleWriter creates a console writer targeting w
// (typically os.Stdout).
func NewConsoleWriter(w io.Writer) *ConsoleWriter {
	return &ConsoleWriter{w: w}
}

// Write renders the color. An I/O failure is reported as
// ErrWriteFailed so the authority's retry path is exercised the same
// way as with real hardware.
func (c *ConsoleWriter) Write(color Color) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Scale the dimmed channel values up so the cell is visible.
	r, g, b := scale(color.R), scale(color.G), scale(color.B)
	_, err := fmt.Fprintf(c.w, "\x1b[48;2;%d;%d;%dm  \x1b[0m #%02x%02x%02x\n", r, g, b, color.R, color.G, color.B)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func scale(v uint8) int {
	if v == 0 {
		return 0
	}
	s := int(v) * 8
	if s > 255 {
		s = 255
	}
	return s
}

// Compile-time interface satisfaction check.
var _ Writer = (*ConsoleWriter)(nil)
