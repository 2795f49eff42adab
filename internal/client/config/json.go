package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avoronov/todovault/internal/flagx"
	"github.com/avoronov/todovault/internal/timex"
)

// JsonConfig is the JSON-file DTO for client configuration. It uses
// timex.Duration so the timeout can be written as "10s" or as integer
// nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	CacheFile      string         `json:"cache_file"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set, no JSON file is loaded. Only fields present in the file
// override the current values.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	}
	if c.CacheFile != "" {
		config.CacheFile = c.CacheFile
	}
}
