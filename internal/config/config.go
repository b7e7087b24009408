// Package config loads runtime settings for the Affirmations client from,
// in order of increasing precedence: defaults, a JSON config file, the
// environment (including .env), and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Affirmations CLI.
//
// SupabaseURL/SupabaseAnonKey identify the remote backend; when either is
// empty the client runs in guest mode and never attempts remote calls.
type Config struct {
	SupabaseURL     string
	SupabaseAnonKey string

	// ClientDBPath is the local SQLite database location.
	ClientDBPath string

	// OnlineCheckInterval is how often the client probes backend
	// reachability.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	home, _ := os.UserHomeDir()
	c.ClientDBPath = filepath.Join(home, ".affirmations.db")
	c.OnlineCheckInterval = 3 * time.Second
}

// Guest reports whether no remote backend is configured.
func (c *Config) Guest() bool {
	return c.SupabaseURL == "" || c.SupabaseAnonKey == ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
