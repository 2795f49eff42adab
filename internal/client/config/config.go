package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the todovault CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST endpoint.
//   - RequestTimeout: per-request HTTP timeout.
//   - CacheFile: path of the local SQLite cache database.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	CacheFile      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	if v := os.Getenv("TODOVAULT_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	c.RequestTimeout = 10 * time.Second
	c.CacheFile = "todovault.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
