// Package app holds the application state controller: an in-memory mirror of
// the local store, mutated only through defined action methods. The controller
// is an explicit context object constructed at startup and closed on exit;
// there is no package-level state.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wallethabit/affirmations/internal/logging"
	"github.com/wallethabit/affirmations/internal/models"
	"github.com/wallethabit/affirmations/internal/monitor"
	"github.com/wallethabit/affirmations/internal/store"
	"github.com/wallethabit/affirmations/internal/streak"
	"github.com/wallethabit/affirmations/internal/syncer"
)

// State is the in-memory snapshot mirroring the local store.
type State struct {
	Affirmations []models.Affirmation
	Sessions     []models.Session
	Settings     models.Settings
	Streak       streak.Result
}

// App owns the sync engine and exposes the user-facing actions. All reads of
// State go through State(); all writes go through the action methods, which
// write through the engine and then refresh the mirror.
type App struct {
	store  *store.Store
	engine *syncer.Engine
	log    logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	state    State
	onChange func(State)
}

// Option customizes the controller.
type Option func(*App)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New constructs the controller and hydrates state from the local store,
// seeding default settings on first run.
func New(ctx context.Context, st *store.Store, engine *syncer.Engine, log logging.Logger, opts ...Option) (*App, error) {
	a := &App{store: st, engine: engine, log: log, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	if _, err := st.Settings.Get(ctx); err != nil {
		if err := st.Settings.Save(ctx, models.DefaultSettings(a.now())); err != nil {
			return nil, err
		}
	}

	if err := a.refresh(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// OnChange registers the re-render callback invoked after every state
// refresh. At most one consumer (the UI) is expected.
func (a *App) OnChange(fn func(State)) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// State returns the current snapshot.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// AddAffirmation creates a custom affirmation.
func (a *App) AddAffirmation(ctx context.Context, category, title, text string) (models.Affirmation, error) {
	rec := models.NewAffirmation(category, title, text, a.now())
	saved, err := a.engine.SaveAffirmation(ctx, rec, models.ActionCreate)
	if err != nil {
		return models.Affirmation{}, err
	}
	return saved, a.refresh(ctx)
}

// EditAffirmation applies a patch to an existing affirmation.
func (a *App) EditAffirmation(ctx context.Context, id string, patch models.AffirmationPatch) (models.Affirmation, error) {
	rec, err := a.store.Affirmations.GetByID(ctx, id)
	if err != nil {
		return models.Affirmation{}, fmt.Errorf("affirmation %s: %w", id, err)
	}
	rec.Apply(patch, a.now())
	saved, err := a.engine.SaveAffirmation(ctx, *rec, models.ActionUpdate)
	if err != nil {
		return models.Affirmation{}, err
	}
	return saved, a.refresh(ctx)
}

// LogSession records a practice session for today and returns the updated
// streak.
func (a *App) LogSession(ctx context.Context, affirmationID string, mode models.PracticeMode, moodBefore, moodAfter int, notes string) (streak.Result, error) {
	s := models.NewSession(affirmationID, mode, a.now(), a.now())
	s.MoodBefore = moodBefore
	s.MoodAfter = moodAfter
	s.Notes = notes

	_, res, err := a.engine.LogSession(ctx, s)
	if err != nil {
		return streak.Result{}, err
	}
	return res, a.refresh(ctx)
}

// UpdateSettings applies a settings patch.
func (a *App) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	current, err := a.store.Settings.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	current.Apply(patch, a.now())
	saved, err := a.engine.SaveSettings(ctx, *current)
	if err != nil {
		return models.Settings{}, err
	}
	return saved, a.refresh(ctx)
}

// SetTheme persists the theme preference in meta (instant local toggle) and
// routes it through settings sync like any other preference.
func (a *App) SetTheme(ctx context.Context, theme string) error {
	if err := a.store.Meta.Set(ctx, store.MetaTheme, []byte(theme)); err != nil {
		return err
	}
	_, err := a.UpdateSettings(ctx, models.SettingsPatch{Theme: &theme})
	return err
}

// Theme returns the locally stored theme preference.
func (a *App) Theme(ctx context.Context) (string, error) {
	b, err := a.store.Meta.Get(ctx, store.MetaTheme)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return a.State().Settings.Theme, nil
	}
	return string(b), nil
}

// Sync triggers an explicit queue flush and refreshes state from whatever
// the flush reconciled.
func (a *App) Sync(ctx context.Context) (syncer.FlushResult, error) {
	res, err := a.engine.Flush(ctx)
	if err != nil {
		return res, err
	}
	return res, a.refresh(ctx)
}

// Status proxies the monitor snapshot enriched with the pending count.
func (a *App) Status(ctx context.Context, m *monitor.Monitor) (monitor.Status, error) {
	return m.Status(ctx)
}

// refresh reloads the in-memory mirror from the local store and notifies the
// UI callback.
func (a *App) refresh(ctx context.Context) error {
	affirmations, err := a.store.Affirmations.List(ctx)
	if err != nil {
		return err
	}
	sessions, err := a.store.Sessions.List(ctx)
	if err != nil {
		return err
	}
	settings, err := a.store.Settings.Get(ctx)
	if err != nil {
		return err
	}
	st, err := a.engine.Streak(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.state = State{
		Affirmations: affirmations,
		Sessions:     sessions,
		Settings:     *settings,
		Streak:       st,
	}
	fn := a.onChange
	state := a.state
	a.mu.Unlock()

	if fn != nil {
		fn(state)
	}
	return nil
}

// Close releases the local store.
func (a *App) Close() error {
	return a.store.Close()
}
