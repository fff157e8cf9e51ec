// Command ledd runs the networked RGB indicator daemon.
//
// The daemon owns one logical indicator: a hue that rotates
// automatically or is pinned by remote commands. It serves the command
// protocol over TCP, mirrors state transitions to a telemetry broker,
// and announces itself via mDNS while the network is up.
//
// Usage:
//
//	ledd [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-listen string     Command server listen address (default ":7420")
//	-name string       Device name, also the mDNS instance name
//	-broker string     Telemetry broker address (empty disables telemetry)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start with defaults, no telemetry
//	ledd
//
//	# Start with a config file and verbose logging
//	ledd -config /etc/ledd/ledd.yaml -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/ledlink/ledd-go/pkg/bus"
	"github.com/ledlink/ledd-go/pkg/command"
	"github.com/ledlink/ledd-go/pkg/config"
	"github.com/ledlink/ledd-go/pkg/connectivity"
	"github.com/ledlink/ledd-go/pkg/discovery"
	"github.com/ledlink/ledd-go/pkg/led"
	"github.com/ledlink/ledd-go/pkg/log"
	"github.com/ledlink/ledd-go/pkg/telemetry"
)

var (
	configPath string
	listenAddr string
	deviceName string
	brokerAddr string
	logLevel   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&listenAddr, "listen", "", "Command server listen address")
	flag.StringVar(&deviceName, "name", "", "Device name, also the mDNS instance name")
	flag.StringVar(&brokerAddr, "broker", "", "Telemetry broker address (empty disables telemetry)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledd: %v\n", err)
		os.Exit(1)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledd: %v\n", err)
		os.Exit(1)
	}
	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(slogger)
	logger := log.NewSlogAdapter(slogger)

	if err := run(cfg, logger); err != nil {
		slogger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// loadConfig merges defaults, the optional config file, and flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if deviceName != "" {
		cfg.Device.Name = deviceName
	}
	if brokerAddr != "" {
		cfg.Telemetry.Broker = brokerAddr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, logger log.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared primitives: one command queue into the authority, one
	// state bus out of it.
	queue := bus.NewQueue[led.Command](cfg.Server.QueueCapacity)
	states := bus.New[led.State]()

	supervisor := connectivity.NewSupervisor(&connectivity.ProbeNetwork{
		Target:   cfg.Network.ProbeTarget,
		Interval: cfg.Network.ProbeInterval,
		Timeout:  cfg.Network.ProbeTimeout,
	}, connectivity.SupervisorConfig{Logger: logger})

	authority := led.NewAuthority(
		led.NewConsoleWriter(os.Stdout),
		queue,
		states,
		led.AuthorityConfig{
			TickInterval: cfg.Device.TickInterval,
			Brightness:   cfg.Device.Brightness,
			Logger:       logger,
		},
	)

	// The telemetry publisher subscribes before the authority starts,
	// so the boot state is the first mirrored transition.
	var publisher *telemetry.Publisher
	if cfg.Telemetry.Broker != "" {
		link := telemetry.NewFrameLink(cfg.Telemetry.Broker)
		defer link.Close()

		var err error
		publisher, err = telemetry.NewPublisher(telemetry.PublisherConfig{
			States:     states,
			Link:       link,
			Attachment: supervisor,
			ColorTopic: cfg.Telemetry.ColorTopic,
			ModeTopic:  cfg.Telemetry.ModeTopic,
			Logger:     logger,
		})
		if err != nil {
			return err
		}
	}

	port, err := listenPort(cfg.Server.Listen)
	if err != nil {
		return err
	}
	responder, err := discovery.NewResponder(discovery.ResponderConfig{
		Watcher: supervisor,
		Info: discovery.ServiceInfo{
			Instance:   cfg.Device.Name,
			Port:       port,
			DeviceName: cfg.Device.Name,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	pool, err := command.NewPool(command.PoolConfig{
		Address:    cfg.Server.Listen,
		Slots:      cfg.Server.Slots,
		Queue:      queue,
		States:     states,
		Gate:       supervisor,
		Brightness: cfg.Device.Brightness,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	start := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}

	start(func() { supervisor.Run(ctx) })
	start(func() { authority.Run(ctx) })
	start(func() { responder.Run(ctx) })
	if publisher != nil {
		start(func() { publisher.Run(ctx) })
	}
	start(func() {
		// Serving starts once the network is attached.
		if err := pool.Start(ctx); err != nil {
			if ctx.Err() == nil {
				slog.Error("command server failed to start", "err", err)
			}
			return
		}
		slog.Info("command server listening", "addr", pool.Addr().String(), "slots", cfg.Server.Slots)
	})

	slog.Info("ledd started", "device", cfg.Device.Name, "listen", cfg.Server.Listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig.String())

	cancel()
	pool.Stop()
	wg.Wait()

	return nil
}

// listenPort extracts the port from a listen address for mDNS.
func listenPort(listen string) (int, error) {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen port %q: %w", portStr, err)
	}
	return port, nil
}
