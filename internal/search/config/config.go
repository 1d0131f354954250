// Package config provides configuration for the search engine, the index
// client and the facet metadata cache.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the search configuration.
type Config struct {
	Elastic ElasticConfig `yaml:"elastic"`

	// IndexName is the product index.
	IndexName string `yaml:"index_name"`

	// EnsureIndex creates the index with its mappings at startup when missing.
	EnsureIndex bool `yaml:"ensure_index"`

	Meta MetaConfig `yaml:"meta"`
}

// ElasticConfig describes how to reach the index service.
type ElasticConfig struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

// MetaConfig tunes the facet metadata cache.
type MetaConfig struct {
	// RecomputeTimeout bounds a single recomputation triggered by a notification.
	RecomputeTimeout time.Duration `yaml:"recompute_timeout"`

	// Coalesce drains notifications that queued up while a recomputation was running.
	Coalesce bool `yaml:"coalesce"`
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		Elastic: ElasticConfig{
			Addresses: []string{"http://localhost:9200"},
		},
		IndexName:   "product",
		EnsureIndex: true,
		Meta: MetaConfig{
			RecomputeTimeout: 30 * time.Second,
			Coalesce:         true,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if len(c.Elastic.Addresses) == 0 {
		c.Elastic.Addresses = defaults.Elastic.Addresses
	}
	if c.IndexName == "" {
		c.IndexName = defaults.IndexName
	}
	if c.Meta.RecomputeTimeout == 0 {
		c.Meta.RecomputeTimeout = defaults.Meta.RecomputeTimeout
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("LOOK_ELASTIC_ADDRESSES"); val != "" {
		c.Elastic.Addresses = splitAddresses(val)
	}
	if val := os.Getenv("LOOK_ELASTIC_USERNAME"); val != "" {
		c.Elastic.Username = val
	}
	if val := os.Getenv("LOOK_ELASTIC_PASSWORD"); val != "" {
		c.Elastic.Password = val
	}
	if val := os.Getenv("LOOK_SEARCH_INDEX"); val != "" {
		c.IndexName = val
	}
}

// ResolvePaths is a no-op; search config has no paths.
func (c *Config) ResolvePaths(_ string) { _ = c }

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if len(c.Elastic.Addresses) == 0 {
		return fmt.Errorf("search.elastic.addresses must not be empty")
	}
	if c.IndexName == "" {
		return fmt.Errorf("search.index_name is required")
	}
	if c.Meta.RecomputeTimeout < 0 {
		return fmt.Errorf("search.meta.recompute_timeout must not be negative")
	}
	return nil
}

func splitAddresses(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
