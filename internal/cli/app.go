// Package cli implements the interactive terminal front-end: a REPL over the
// application controller, plus the login/logout flows.
package cli

import (
	"bufio"
	"context"
	"os"

	_ "modernc.org/sqlite"

	"github.com/wallethabit/affirmations/internal/app"
	"github.com/wallethabit/affirmations/internal/config"
	"github.com/wallethabit/affirmations/internal/logging"
	"github.com/wallethabit/affirmations/internal/monitor"
	"github.com/wallethabit/affirmations/internal/remote"
	"github.com/wallethabit/affirmations/internal/store"
	"github.com/wallethabit/affirmations/internal/syncer"
)

// App wires the client together: local store, optional remote gateway, sync
// engine, monitor, and the state controller the REPL talks to.
type App struct {
	cfg        *config.Config
	gw         remote.Gateway // nil in guest mode
	controller *app.App
	mon        *monitor.Monitor
	log        logging.Logger
	reader     *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	st, err := store.Open(ctx, cfg.ClientDBPath)
	if err != nil {
		log.Error(ctx, "error initializing local database", "error", err)
		return nil, err
	}

	var gw remote.Gateway
	if !cfg.Guest() {
		gw = remote.NewHTTPGateway(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	}

	engine := syncer.New(st, gw, log)
	mon := monitor.New(gw, engine, log, cfg.OnlineCheckInterval)

	controller, err := app.New(ctx, st, engine, log)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:        cfg,
		gw:         gw,
		controller: controller,
		mon:        mon,
		log:        log,
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the monitor loop and the REPL, and closes resources on exit.
func (a *App) Run(ctx context.Context) {
	defer a.controller.Close()
	if a.gw != nil {
		defer a.gw.Close()
	}

	go a.mon.Start(ctx)

	a.Root(ctx)
}
