package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "embeddinggemma", cfg.Model)
	assert.Equal(t, "none", cfg.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
		require.NoError(t, cfg.Validate())
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithModel("custom-embed"),
			WithAPIKey("sk-test"),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.Host)
		assert.Equal(t, "custom-embed", cfg.Model)
		assert.Equal(t, "sk-test", cfg.APIKey)
	})

	t.Run("single option leaves the rest alone", func(t *testing.T) {
		cfg := NewConfig(WithModel("text-embedding-3-small"))

		assert.Equal(t, "text-embedding-3-small", cfg.Model)
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
		assert.Equal(t, "none", cfg.APIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	hosts := map[string]string{
		"http://localhost:11434/v1": "http://localhost:11434/v1",
		"http://localhost:11434":    "http://localhost:11434/v1",
		"http://localhost:11434/":   "http://localhost:11434/v1",
		"":                          "",
	}
	for host, want := range hosts {
		cfg := &Config{Host: host}
		cfg.Normalize()
		assert.Equal(t, want, cfg.Host, "host %q", host)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Host:   "http://localhost:11434",
			Model:  "embeddinggemma",
			APIKey: "none",
		}
	}

	t.Run("complete config", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host, "validation normalizes the host")
	})

	missing := []struct {
		name  string
		strip func(*Config)
		field string
	}{
		{"host", func(c *Config) { c.Host = "" }, "Host"},
		{"model", func(c *Config) { c.Model = "" }, "Model"},
		{"api key", func(c *Config) { c.APIKey = "" }, "APIKey"},
	}
	for _, tc := range missing {
		t.Run("missing "+tc.name, func(t *testing.T) {
			cfg := valid()
			tc.strip(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}
