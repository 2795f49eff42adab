package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "todovault.db", cfg.CacheFile)
}

func TestLoadDefaultsEnvOverride(t *testing.T) {
	t.Setenv("TODOVAULT_SERVER_URL", "https://todo.example.com")

	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "https://todo.example.com", cfg.ServerURL)
}

func TestParseJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	raw, err := json.Marshal(map[string]any{
		"server_url":      "https://todo.example.com",
		"request_timeout": "30s",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	os.Args = []string{"client", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://todo.example.com", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	// untouched by the file
	assert.Equal(t, "todovault.db", cfg.CacheFile)
}

func TestParseFlags(t *testing.T) {
	os.Args = []string{"client", "-a", "http://localhost:9090", "-t", "5", "-f", "cache.db"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://localhost:9090", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "cache.db", cfg.CacheFile)
}
