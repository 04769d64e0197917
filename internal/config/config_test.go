package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Bus.Number != 1 {
		t.Errorf("bus number: got %d, want 1", cfg.Bus.Number)
	}
	if cfg.Bus.Address != 99 {
		t.Errorf("address: got %d, want 99", cfg.Bus.Address)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
bus:
  number: 0
  address: 102
log:
  level: debug
mqtt:
  broker: tcp://localhost:1883
  topic: tank/ph
  period_seconds: 2.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bus.Number != 0 {
		t.Errorf("bus number: got %d, want 0", cfg.Bus.Number)
	}
	if cfg.Bus.Address != 102 {
		t.Errorf("address: got %d, want 102", cfg.Bus.Address)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: got %q, want debug", cfg.Log.Level)
	}
	if cfg.MQTT.Topic != "tank/ph" {
		t.Errorf("topic: got %q, want tank/ph", cfg.MQTT.Topic)
	}
	if want := 2500 * time.Millisecond; cfg.MQTT.Period() != want {
		t.Errorf("period: got %v, want %v", cfg.MQTT.Period(), want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"negative bus", func(c *Config) { c.Bus.Number = -1 }, false},
		{"address too high", func(c *Config) { c.Bus.Address = 128 }, false},
		{"negative address", func(c *Config) { c.Bus.Address = -1 }, false},
		{"negative baud", func(c *Config) { c.Bus.BaudRate = -9600 }, false},
		{"mqtt without topic", func(c *Config) {
			c.MQTT.Broker = "tcp://localhost:1883"
			c.MQTT.Topic = ""
		}, false},
		{"mqtt without period", func(c *Config) {
			c.MQTT.Broker = "tcp://localhost:1883"
			c.MQTT.PeriodSeconds = 0
		}, false},
		{"mqtt complete", func(c *Config) {
			c.MQTT.Broker = "tcp://localhost:1883"
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
