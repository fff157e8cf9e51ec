// Package config loads the daemon configuration from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Server    ServerConfig    `yaml:"server"`
	Network   NetworkConfig   `yaml:"network"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// DeviceConfig configures the indicator itself.
type DeviceConfig struct {
	// Name is the device name, used as the mDNS instance name.
	Name string `yaml:"name"`

	// Brightness is the channel value for the active hue (1-255).
	Brightness uint8 `yaml:"brightness"`

	// TickInterval is the auto-mode rotation period.
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ServerConfig configures the command server.
type ServerConfig struct {
	// Listen is the TCP listen address.
	Listen string `yaml:"listen"`

	// Slots is the number of concurrent command sessions.
	Slots int `yaml:"slots"`

	// QueueCapacity bounds the pending command queue.
	QueueCapacity int `yaml:"queue_capacity"`
}

// NetworkConfig configures the connectivity probe.
type NetworkConfig struct {
	// ProbeTarget is the TCP address dialed to verify connectivity.
	ProbeTarget string `yaml:"probe_target"`

	// ProbeInterval between connectivity checks.
	ProbeInterval time.Duration `yaml:"probe_interval"`

	// ProbeTimeout per connectivity check.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// TelemetryConfig configures the broker link. An empty broker address
// disables telemetry.
type TelemetryConfig struct {
	// Broker is the broker TCP address (host:port).
	Broker string `yaml:"broker"`

	// ColorTopic receives hue names.
	ColorTopic string `yaml:"color_topic"`

	// ModeTopic receives mode names.
	ModeTopic string `yaml:"mode_topic"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:         "ledd",
			Brightness:   10,
			TickInterval: time.Second,
		},
		Server: ServerConfig{
			Listen:        ":7420",
			Slots:         2,
			QueueCapacity: 8,
		},
		Network: NetworkConfig{
			ProbeTarget:   "1.1.1.1:53",
			ProbeInterval: 5 * time.Second,
			ProbeTimeout:  2 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ColorTopic: "led/color",
			ModeTopic:  "led/mode",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. Missing keys keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Device.Name == "" {
		return fmt.Errorf("device.name must not be empty")
	}
	if c.Device.TickInterval <= 0 {
		return fmt.Errorf("device.tick_interval must be positive")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.Slots <= 0 {
		return fmt.Errorf("server.slots must be positive")
	}
	if c.Server.QueueCapacity <= 0 {
		return fmt.Errorf("server.queue_capacity must be positive")
	}
	if c.Network.ProbeTarget == "" {
		return fmt.Errorf("network.probe_target must not be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel translates the configured level to a slog.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
}
