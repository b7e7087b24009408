package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/wallethabit/affirmations/internal/flagx"
	"github.com/wallethabit/affirmations/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds.
type JsonConfig struct {
	SupabaseURL         string         `json:"supabase_url"`
	SupabaseAnonKey     string         `json:"supabase_anon_key"`
	ClientDBPath        string         `json:"client_db_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file located via
// the -c/-config flags. Missing flag means no JSON is loaded. Empty JSON
// fields leave the existing value untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.SupabaseURL != "" {
		cfg.SupabaseURL = jc.SupabaseURL
	}
	if jc.SupabaseAnonKey != "" {
		cfg.SupabaseAnonKey = jc.SupabaseAnonKey
	}
	if jc.ClientDBPath != "" {
		cfg.ClientDBPath = jc.ClientDBPath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
