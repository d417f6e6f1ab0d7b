package xposts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig()
	valid.Keywords = []string{"clawbot"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no keywords", func(c *Config) { c.Keywords = nil }, true},
		{"empty keyword", func(c *Config) { c.Keywords = []string{"ok", ""} }, true},
		{"zero target", func(c *Config) { c.TargetCount = 0 }, true},
		{"negative target", func(c *Config) { c.TargetCount = -1 }, true},
		{"zero stagnant limit", func(c *Config) { c.StagnantLimit = 0 }, true},
		{"no base url", func(c *Config) { c.BaseURL = "" }, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
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

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	assert.Equal(t, 10, cfg.TargetCount)
	assert.Equal(t, 3, cfg.StagnantLimit)
	assert.Equal(t, "https://x.com", cfg.BaseURL)
	assert.True(t, cfg.Headless)
}
