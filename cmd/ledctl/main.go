// Command ledctl is an interactive client for a ledd device.
//
// It connects to the device's command server, shows status updates as
// they arrive, and sends color and mode commands. Devices on the local
// network can be found with the discover command.
//
// Usage:
//
//	ledctl [flags]
//
// Flags:
//
//	-addr string  Device command server address (default "localhost:7420")
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/enbility/zeroconf/v3"

	"github.com/ledlink/ledd-go/pkg/discovery"
	"github.com/ledlink/ledd-go/pkg/led"
	"github.com/ledlink/ledd-go/pkg/transport"
	"github.com/ledlink/ledd-go/pkg/wire"
)

var deviceAddr string

func init() {
	flag.StringVar(&deviceAddr, "addr", "localhost:7420", "Device command server address")
}

func main() {
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ledctl> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledctl: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	client := &client{rl: rl}
	if err := client.connect(deviceAddr); err != nil {
		fmt.Fprintf(os.Stderr, "ledctl: %v\n", err)
		os.Exit(1)
	}
	defer client.close()

	client.run()
}

// client holds the connection to one device.
type client struct {
	rl     *readline.Instance
	conn   io.Closer
	framer *transport.Framer

	mu         sync.Mutex
	lastStatus *wire.StatusPayload
}

// connect dials the device and starts the status reader.
func (c *client) connect(addr string) error {
	conn, err := transport.Dial(addr)
	if err != nil {
		return err
	}
	c.conn = conn
	c.framer = transport.NewFramer(conn)

	go c.readLoop()

	fmt.Fprintf(c.rl.Stdout(), "Connected to %s\n", addr)
	return nil
}

func (c *client) close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// readLoop prints server messages as they arrive.
func (c *client) readLoop() {
	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			fmt.Fprintln(c.rl.Stdout(), "Connection closed by device")
			return
		}

		msg, err := wire.DecodeServerMessage(data)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Undecodable message from device: %v\n", err)
			continue
		}

		switch msg.Type {
		case wire.ServerMessageStatus:
			c.mu.Lock()
			c.lastStatus = msg.Status
			c.mu.Unlock()
			fmt.Fprintf(c.rl.Stdout(), "Status: %s\n", formatStatus(msg.Status))

		case wire.ServerMessageError:
			fmt.Fprintf(c.rl.Stdout(), "Device rejected command: %s\n", msg.Error.Message)
		}
	}
}

// run is the interactive command loop.
func (c *client) run() {
	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "color", "c":
			c.cmdColor(args)

		case "mode", "m":
			c.cmdMode(args)

		case "status", "s":
			c.cmdStatus()

		case "discover", "d":
			c.cmdDiscover()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *client) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
ledctl Commands:
  color <red|green|blue>  - Pin a color (device must be in manual mode)
  mode <auto|manual>      - Switch rotation mode
  status                  - Show the last received device status
  discover                - Find ledd devices on the local network
  help                    - Show this help
  quit                    - Exit`)
}

// cmdColor sends a set_color command.
func (c *client) cmdColor(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: color <red|green|blue>")
		return
	}
	if _, err := led.ParseHue(args[0]); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid color: %v\n", err)
		return
	}
	c.send(&wire.ClientMessage{Type: wire.MessageTypeSetColor, Color: args[0]})
}

// cmdMode sends a set_mode command.
func (c *client) cmdMode(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: mode <auto|manual>")
		return
	}
	if _, err := led.ParseMode(args[0]); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid mode: %v\n", err)
		return
	}
	c.send(&wire.ClientMessage{Type: wire.MessageTypeSetMode, Mode: args[0]})
}

// cmdStatus prints the most recent status from the device.
func (c *client) cmdStatus() {
	c.mu.Lock()
	status := c.lastStatus
	c.mu.Unlock()

	if status == nil {
		fmt.Fprintln(c.rl.Stdout(), "No status received yet")
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Status: %s\n", formatStatus(status))
}

// cmdDiscover browses for ledd devices via mDNS.
func (c *client) cmdDiscover() {
	fmt.Fprintln(c.rl.Stdout(), "Browsing for devices (3s)...")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	found := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				found++
				addrs := make([]string, 0, len(entry.AddrIPv4))
				for _, ip := range entry.AddrIPv4 {
					addrs = append(addrs, fmt.Sprintf("%s:%d", ip, entry.Port))
				}
				fmt.Fprintf(c.rl.Stdout(), "  %s  %s\n", entry.Instance, strings.Join(addrs, " "))
			case <-removed:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := zeroconf.Browse(ctx, discovery.ServiceType, discovery.Domain, entries, removed); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Browse failed: %v\n", err)
		return
	}
	<-done

	if found == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices found")
	}
}

// send encodes and writes one client message.
func (c *client) send(msg *wire.ClientMessage) {
	data, err := wire.EncodeClientMessage(msg)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Encode failed: %v\n", err)
		return
	}
	if err := c.framer.WriteFrame(data); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Send failed: %v\n", err)
	}
}

func formatStatus(s *wire.StatusPayload) string {
	return fmt.Sprintf("%s (#%02x%02x%02x) mode=%s at %s",
		s.Color, s.RGB[0], s.RGB[1], s.RGB[2], s.Mode,
		time.UnixMilli(int64(s.TimestampMS)).Format("15:04:05"))
}
