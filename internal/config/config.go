// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/geoscope/internal/common"
)

// Config is the typed application configuration, loaded from Viper.
type Config struct {
	// APIBaseURL is the backend serving /api/countries, /api/map/geojson
	// and the clustering endpoints.
	APIBaseURL string
	// DataDir holds the static fallback files (countries.csv, world.geojson)
	// used when the backend is unreachable.
	DataDir string
	// ExportDir is where the export command writes chart images.
	ExportDir string
	// ServeAddr is the listen address for serve mode.
	ServeAddr string
	// RequestTimeout bounds each backend request.
	RequestTimeout time.Duration
	// RetryAttempts is the per-request retry budget for transient
	// backend failures. Falling back to static files is separate and
	// happens only after the whole primary load fails.
	RetryAttempts int
}

// Load reads the configuration from Viper, applying defaults where keys
// are unset.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:     "http://localhost:8080",
		DataDir:        "./data",
		ExportDir:      ".",
		ServeAddr:      ":9090",
		RequestTimeout: 30 * time.Second,
		RetryAttempts:  2,
	}

	if v := viper.GetString("api.base_url"); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := viper.GetString("data.dir"); v != "" {
		cfg.DataDir = ExpandPath(v)
	}
	if v := viper.GetString("export.dir"); v != "" {
		cfg.ExportDir = ExpandPath(v)
	}
	if v := viper.GetString("serve.addr"); v != "" {
		cfg.ServeAddr = v
	}
	if v := viper.GetDuration("api.timeout"); v > 0 {
		cfg.RequestTimeout = v
	}
	if viper.IsSet("api.retry_attempts") {
		cfg.RetryAttempts = viper.GetInt("api.retry_attempts")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", common.ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("%w: api.base_url must be an http(s) URL, got %q", common.ErrInvalidConfig, c.APIBaseURL)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("%w: api.retry_attempts must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
