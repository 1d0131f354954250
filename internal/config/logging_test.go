package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingConfig_ApplyDefaults(t *testing.T) {
	cfg := LoggingConfig{Level: "warn"}
	cfg.ApplyDefaults()

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "logs", cfg.Dir)
	assert.Equal(t, 100, cfg.Rotation.MaxSize)
	assert.Equal(t, "warn", cfg.Console.Level)
	assert.Equal(t, "warn", cfg.File.Level)
}

func TestLoggingConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("LOOK_LOG_LEVEL", "error")
	t.Setenv("LOOK_LOG_FORMAT", "json")

	cfg := DefaultLoggingConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "error", cfg.Level)
	assert.Equal(t, "error", cfg.File.Level)
	assert.Equal(t, "json", cfg.Console.Format)
}

func TestLoggingConfig_ResolvePaths(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "srv", "look", "config")

	cfg := LoggingConfig{Dir: "logs"}
	cfg.ResolvePaths(base)
	assert.Equal(t, filepath.Join(string(filepath.Separator), "srv", "look", "logs"), cfg.Dir)

	cfg = LoggingConfig{Dir: "../var/log"}
	cfg.ResolvePaths(base)
	assert.Equal(t, filepath.Join(string(filepath.Separator), "srv", "look", "var", "log"), cfg.Dir)

	abs := filepath.Join(string(filepath.Separator), "var", "log", "look")
	cfg = LoggingConfig{Dir: abs}
	cfg.ResolvePaths(base)
	assert.Equal(t, abs, cfg.Dir)
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LoggingConfig)
		wantErr bool
	}{
		{"defaults", func(c *LoggingConfig) {}, false},
		{"bad level", func(c *LoggingConfig) { c.Level = "trace" }, true},
		{"bad format", func(c *LoggingConfig) { c.Format = "xml" }, true},
		{"bad console level", func(c *LoggingConfig) { c.Console.Level = "loud" }, true},
		{"file without dir", func(c *LoggingConfig) { c.File.Enabled = true; c.Dir = "" }, true},
		{"disabled file ignores its format", func(c *LoggingConfig) { c.File.Format = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLoggingConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
