package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// envConfig is a DTO for the environment overlay. A .env file in the working
// directory is honored before reading the process environment.
type envConfig struct {
	SupabaseURL         string        `env:"SUPABASE_URL"`
	SupabaseAnonKey     string        `env:"SUPABASE_ANON_KEY"`
	ClientDBPath        string        `env:"CLIENT_DB_PATH"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
}

// parseEnv overlays Config with values from the environment. Unset variables
// leave the existing value untouched.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		panic(err)
	}

	if ec.SupabaseURL != "" {
		cfg.SupabaseURL = ec.SupabaseURL
	}
	if ec.SupabaseAnonKey != "" {
		cfg.SupabaseAnonKey = ec.SupabaseAnonKey
	}
	if ec.ClientDBPath != "" {
		cfg.ClientDBPath = ec.ClientDBPath
	}
	if ec.OnlineCheckInterval != 0 {
		cfg.OnlineCheckInterval = ec.OnlineCheckInterval
	}
}
