package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
device:
  name: kitchen-indicator
  brightness: 64
  tick_interval: 250ms
server:
  listen: ":9000"
  slots: 4
telemetry:
  broker: "broker.local:1900"
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Device.Name != "kitchen-indicator" {
		t.Errorf("Name = %q", cfg.Device.Name)
	}
	if cfg.Device.Brightness != 64 {
		t.Errorf("Brightness = %d", cfg.Device.Brightness)
	}
	if cfg.Device.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v", cfg.Device.TickInterval)
	}
	if cfg.Server.Listen != ":9000" || cfg.Server.Slots != 4 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Telemetry.Broker != "broker.local:1900" {
		t.Errorf("Broker = %q", cfg.Telemetry.Broker)
	}

	// Missing keys keep defaults
	if cfg.Server.QueueCapacity != 8 {
		t.Errorf("QueueCapacity = %d, want default 8", cfg.Server.QueueCapacity)
	}
	if cfg.Telemetry.ColorTopic != "led/color" {
		t.Errorf("ColorTopic = %q, want default", cfg.Telemetry.ColorTopic)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel failed: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "device: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty name", func(c *Config) { c.Device.Name = "" }},
		{"zero tick", func(c *Config) { c.Device.TickInterval = 0 }},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }},
		{"zero slots", func(c *Config) { c.Server.Slots = 0 }},
		{"negative slots", func(c *Config) { c.Server.Slots = -1 }},
		{"zero queue", func(c *Config) { c.Server.QueueCapacity = 0 }},
		{"empty probe target", func(c *Config) { c.Network.ProbeTarget = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}
