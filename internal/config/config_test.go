package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "wire", cfg.Endpoint.Transport)
	assert.Equal(t, 5*time.Second, cfg.Endpoint.DialTimeout.Std())
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oapi.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint": {"address": "unix:///tmp/sap.sock", "dial_timeout": "250ms"},
		"api": {"version": "v15"},
		"journal": {"sink": "file", "path": "/tmp/j.jsonl"}
	}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "unix:///tmp/sap.sock", cfg.Endpoint.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Endpoint.DialTimeout.Std())
	assert.Equal(t, "v15", cfg.API.Version)
	assert.Equal(t, "file", cfg.Journal.Sink)
	// untouched sections keep their defaults
	assert.Equal(t, "wire", cfg.Endpoint.Transport)
	assert.Equal(t, "oapi:calls", cfg.Journal.Redis.Stream)
}

func TestNumericDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte("1000000")))
	assert.Equal(t, time.Millisecond, d.Std())
	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OAPI_ENDPOINT", "vsock://3:7400")
	t.Setenv("OAPI_TRANSPORT", "grpc")
	t.Setenv("OAPI_API_VERSION", "v15")
	t.Setenv("OAPI_REDIS_DB", "2")
	t.Setenv("OAPI_DIAL_TIMEOUT", "2s")
	t.Setenv("OAPI_TRACING_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "vsock://3:7400", cfg.Endpoint.Address)
	assert.Equal(t, "grpc", cfg.Endpoint.Transport)
	assert.Equal(t, "v15", cfg.API.Version)
	assert.Equal(t, 2, cfg.Journal.Redis.DB)
	assert.Equal(t, 2*time.Second, cfg.Endpoint.DialTimeout.Std())
	assert.True(t, cfg.Observability.Tracing.Enabled)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"transport": func(c *Config) { c.Endpoint.Transport = "http" },
		"codec":     func(c *Config) { c.Endpoint.Codec = "xml" },
		"version":   func(c *Config) { c.API.Version = "v13" },
		"sink":      func(c *Config) { c.Journal.Sink = "s3" },
		"dsn":       func(c *Config) { c.Journal.Sink = "postgres" },
		"log level": func(c *Config) { c.Observability.LogLevel = "chatty" },
		"format":    func(c *Config) { c.Observability.LogFormat = "xml" },
	} {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
