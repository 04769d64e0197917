// Package config loads the shell's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hydropath/atlas-ezo/ezo"
)

// Config is the shell's runtime configuration.
type Config struct {
	Bus  BusConfig  `yaml:"bus"`
	Log  LogConfig  `yaml:"log"`
	MQTT MQTTConfig `yaml:"mqtt"`
}

// BusConfig selects the transport and the device address.
type BusConfig struct {
	Number  int `yaml:"number"`
	Address int `yaml:"address"`

	// SerialPort switches the shell to the UART transport when set.
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MQTTConfig enables forwarding polled readings to a broker. Forwarding is
// disabled unless Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`

	// PeriodSeconds is the polling period used when the poll command is
	// given no explicit SECONDS argument.
	PeriodSeconds float64 `yaml:"period_seconds"`
}

// Period returns PeriodSeconds as a duration.
func (m MQTTConfig) Period() time.Duration {
	return time.Duration(m.PeriodSeconds * float64(time.Second))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Bus: BusConfig{Number: ezo.DefaultBus, Address: ezo.DefaultAddress},
		Log: LogConfig{Level: "info", Format: "text"},
		MQTT: MQTTConfig{
			Topic:         "atlas/ezo",
			ClientID:      "ezo-shell",
			PeriodSeconds: 10,
		},
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func Validate(cfg *Config) error {
	if cfg.Bus.Number < 0 {
		return fmt.Errorf("bus.number must be >= 0, got %d", cfg.Bus.Number)
	}
	if cfg.Bus.Address < 0 || cfg.Bus.Address > ezo.MaxAddress {
		return fmt.Errorf("bus.address must be in 0..%d, got %d", ezo.MaxAddress, cfg.Bus.Address)
	}
	if cfg.Bus.BaudRate < 0 {
		return fmt.Errorf("bus.baud_rate must be >= 0, got %d", cfg.Bus.BaudRate)
	}
	if cfg.MQTT.Broker != "" {
		if cfg.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.topic is required when mqtt.broker is set")
		}
		if cfg.MQTT.PeriodSeconds <= 0 {
			return fmt.Errorf("mqtt.period_seconds must be > 0, got %v", cfg.MQTT.PeriodSeconds)
		}
	}
	return nil
}
