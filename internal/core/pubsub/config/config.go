// Package config provides configuration for the invalidation transport.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Transport selects the pubsub backend.
type Transport string

const (
	// TransportPostgres uses LISTEN/NOTIFY on the system of record (default).
	TransportPostgres Transport = "postgres"
	// TransportNATS uses a NATS server as a dedicated broker.
	TransportNATS Transport = "nats"
	// TransportMemory delivers within the current process only.
	TransportMemory Transport = "memory"
)

// Config holds the pubsub configuration.
type Config struct {
	Transport Transport `yaml:"transport"`

	// Channel is the well-known channel name shared by every process.
	Channel string `yaml:"channel"`

	// NATSURL is only used with the nats transport.
	NATSURL string `yaml:"nats_url"`

	// BufferSize is the per-subscription notification buffer.
	BufferSize int `yaml:"buffer_size"`
}

// DefaultConfig returns the default pubsub configuration.
func DefaultConfig() Config {
	return Config{
		Transport:  TransportPostgres,
		Channel:    "search_meta_refresh",
		NATSURL:    "nats://localhost:4222",
		BufferSize: 16,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Transport == "" {
		c.Transport = defaults.Transport
	}
	if c.Channel == "" {
		c.Channel = defaults.Channel
	}
	if c.NATSURL == "" {
		c.NATSURL = defaults.NATSURL
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaults.BufferSize
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("LOOK_PUBSUB_TRANSPORT"); val != "" {
		c.Transport = Transport(val)
	}
	if val := os.Getenv("LOOK_NATS_URL"); val != "" {
		c.NATSURL = val
	}
	if val := os.Getenv("LOOK_PUBSUB_BUFFER_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.BufferSize = n
		}
	}
}

// ResolvePaths is a no-op; pubsub config has no paths.
func (c *Config) ResolvePaths(_ string) { _ = c }

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportPostgres, TransportMemory:
	case TransportNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("pubsub.nats_url is required for the nats transport")
		}
	default:
		return fmt.Errorf("pubsub.transport must be 'postgres', 'nats' or 'memory', got '%s'", c.Transport)
	}
	if c.Channel == "" {
		return fmt.Errorf("pubsub.channel is required")
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("pubsub.buffer_size must be positive")
	}
	return nil
}
