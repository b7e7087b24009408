package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"affirm"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.NotEmpty(t, cfg.ClientDBPath)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	assert.True(t, cfg.Guest())
}

func TestGuest(t *testing.T) {
	cfg := Config{SupabaseURL: "http://x"}
	assert.True(t, cfg.Guest(), "url without key is still guest")

	cfg.SupabaseAnonKey = "anon"
	assert.False(t, cfg.Guest())
}

func TestParseJson_OverlaysOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"supabase_url": "http://json",
		"online_check_interval": "5s"
	}`), 0o600))
	withArgs(t, "-c", path)

	var cfg Config
	cfg.LoadDefaults()
	dbPath := cfg.ClientDBPath
	parseJson(&cfg)

	assert.Equal(t, "http://json", cfg.SupabaseURL)
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, dbPath, cfg.ClientDBPath, "unset JSON field keeps the default")
}

func TestParseJson_NoFlagNoFile(t *testing.T) {
	withArgs(t)

	var cfg Config
	cfg.LoadDefaults()
	before := cfg
	parseJson(&cfg)
	assert.Equal(t, before, cfg)
}

func TestParseEnv_Overlays(t *testing.T) {
	t.Setenv("SUPABASE_URL", "http://env")
	t.Setenv("SUPABASE_ANON_KEY", "env-key")
	t.Setenv("ONLINE_CHECK_INTERVAL", "7s")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, "http://env", cfg.SupabaseURL)
	assert.Equal(t, "env-key", cfg.SupabaseAnonKey)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.False(t, cfg.Guest())
}

func TestParseFlags_TakePrecedence(t *testing.T) {
	withArgs(t, "-u", "http://flag", "-k", "flag-key", "-d", "/tmp/db.sqlite", "-i", "10")

	var cfg Config
	cfg.LoadDefaults()
	cfg.SupabaseURL = "http://earlier"
	parseFlags(&cfg)

	assert.Equal(t, "http://flag", cfg.SupabaseURL)
	assert.Equal(t, "flag-key", cfg.SupabaseAnonKey)
	assert.Equal(t, "/tmp/db.sqlite", cfg.ClientDBPath)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}
