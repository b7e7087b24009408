package config

import (
	"flag"
	"os"
	"time"

	"github.com/wallethabit/affirmations/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-u string   Supabase project URL
//	-k string   Supabase anon (public) API key
//	-d string   path to the local SQLite database
//	-i int      online check interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-k", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SupabaseURL, "u", cfg.SupabaseURL, "Supabase project URL")
	fs.StringVar(&cfg.SupabaseAnonKey, "k", cfg.SupabaseAnonKey, "Supabase anon API key")
	fs.StringVar(&cfg.ClientDBPath, "d", cfg.ClientDBPath, "path to local database")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
