// Package config provides configuration for collection membership operations.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the collection configuration.
type Config struct {
	// DefaultCacheSize bounds the user -> default collection cache.
	DefaultCacheSize int `yaml:"default_cache_size"`
}

// DefaultConfig returns the default collection configuration.
func DefaultConfig() Config {
	return Config{
		DefaultCacheSize: 2048,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.DefaultCacheSize == 0 {
		c.DefaultCacheSize = DefaultConfig().DefaultCacheSize
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("LOOK_DEFAULT_COLLECTION_CACHE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.DefaultCacheSize = n
		}
	}
}

// ResolvePaths is a no-op; collection config has no paths.
func (c *Config) ResolvePaths(_ string) { _ = c }

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.DefaultCacheSize < 1 {
		return fmt.Errorf("collection.default_cache_size must be positive, got %d", c.DefaultCacheSize)
	}
	return nil
}
