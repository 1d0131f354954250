package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	collection "github.com/KruASe76/look/internal/collection/config"
	pubsub "github.com/KruASe76/look/internal/core/pubsub/config"
	storage "github.com/KruASe76/look/internal/core/storage/config"
	search "github.com/KruASe76/look/internal/search/config"
	"github.com/KruASe76/look/internal/server"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server  server.Config `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`

	Storage    storage.Config    `yaml:"storage"`
	PubSub     pubsub.Config     `yaml:"pubsub"`
	Search     search.Config     `yaml:"search"`
	Collection collection.Config `yaml:"collection"`
}

// Default returns a Config populated with every component's defaults.
func Default() *Config {
	return &Config{
		Server:     server.DefaultConfig(),
		Logging:    DefaultLoggingConfig(),
		Storage:    storage.DefaultConfig(),
		PubSub:     pubsub.DefaultConfig(),
		Search:     search.DefaultConfig(),
		Collection: collection.DefaultConfig(),
	}
}

// LoadConfig loads configuration from files and environment variables.
// Order: defaults -> config.yml -> config.local.yml -> ApplyDefaults -> ApplyEnvOverrides -> ResolvePaths -> Validate
func LoadConfig(configDir string) (*Config, error) {
	// Defaults first so YAML can override them, including bool fields
	cfg := Default()

	loadFile(filepath.Join(configDir, "config.yml"), cfg)
	loadFile(filepath.Join(configDir, "config.local.yml"), cfg)

	if err := ApplyServiceConfigs(configDir,
		&cfg.Server,
		&cfg.Logging,
		&cfg.Storage,
		&cfg.PubSub,
		&cfg.Search,
		&cfg.Collection,
	); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return cfg, nil
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		slog.Warn("Error reading config file", "file", filename, "error", err)
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("Error parsing config file", "file", filename, "error", err)
	}
}
