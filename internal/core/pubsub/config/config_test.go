package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, TransportPostgres, cfg.Transport)
	assert.Equal(t, "search_meta_refresh", cfg.Channel)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("LOOK_PUBSUB_TRANSPORT", "nats")
	t.Setenv("LOOK_NATS_URL", "nats://env:4222")
	t.Setenv("LOOK_PUBSUB_BUFFER_SIZE", "64")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, TransportNATS, cfg.Transport)
	assert.Equal(t, "nats://env:4222", cfg.NATSURL)
	assert.Equal(t, 64, cfg.BufferSize)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory", func(c *Config) { c.Transport = TransportMemory }, false},
		{"nats without url", func(c *Config) { c.Transport = TransportNATS; c.NATSURL = "" }, true},
		{"unknown transport", func(c *Config) { c.Transport = "kafka" }, true},
		{"empty channel", func(c *Config) { c.Channel = "" }, true},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
