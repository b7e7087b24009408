package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/wallethabit/affirmations/internal/logging"
	"github.com/wallethabit/affirmations/internal/models"
	"github.com/wallethabit/affirmations/internal/store"
	"github.com/wallethabit/affirmations/internal/syncer"
)

func setupApp(t *testing.T, now time.Time) (*App, *store.Store) {
	t.Helper()
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := func() time.Time { return now }
	engine := syncer.New(st, nil, log, syncer.WithClock(clock))

	a, err := New(ctx, st, engine, log, WithClock(clock))
	require.NoError(t, err)
	return a, st
}

func TestNew_SeedsDefaultSettings(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	a, st := setupApp(t, now)

	assert.Equal(t, 1, a.State().Settings.DailyGoal)
	assert.Equal(t, "light", a.State().Settings.Theme)

	saved, err := st.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.State().Settings, *saved)
}

func TestAddAffirmation_UpdatesStateAndNotifies(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	a, _ := setupApp(t, now)
	ctx := context.Background()

	var changes int
	a.OnChange(func(State) { changes++ })

	saved, err := a.AddAffirmation(ctx, "money", "Abundance", "Money flows to me")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.True(t, saved.Custom)

	state := a.State()
	require.Len(t, state.Affirmations, 1)
	assert.Equal(t, saved.ID, state.Affirmations[0].ID)
	assert.Equal(t, 1, changes)
}

func TestEditAffirmation_AppliesPatch(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	a, _ := setupApp(t, now)
	ctx := context.Background()

	saved, err := a.AddAffirmation(ctx, "money", "Abundance", "Money flows to me")
	require.NoError(t, err)

	title := "Wealth"
	edited, err := a.EditAffirmation(ctx, saved.ID, models.AffirmationPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Wealth", edited.Title)
	assert.Equal(t, "Money flows to me", edited.Text)

	assert.Equal(t, "Wealth", a.State().Affirmations[0].Title)
}

func TestEditAffirmation_MissingID(t *testing.T) {
	a, _ := setupApp(t, time.Now())

	title := "x"
	_, err := a.EditAffirmation(context.Background(), "nope", models.AffirmationPatch{Title: &title})
	assert.Error(t, err)
}

func TestLogSession_UpdatesStreakInState(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	a, _ := setupApp(t, now)
	ctx := context.Background()

	saved, err := a.AddAffirmation(ctx, "money", "Abundance", "Money flows to me")
	require.NoError(t, err)

	res, err := a.LogSession(ctx, saved.ID, models.ModeSpeaking, 3, 5, "felt good")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, "2024-01-05", res.LastPracticeDate)

	state := a.State()
	require.Len(t, state.Sessions, 1)
	assert.Equal(t, 3, state.Sessions[0].MoodBefore)
	assert.Equal(t, 5, state.Sessions[0].MoodAfter)
	assert.Equal(t, res, state.Streak)
}

func TestUpdateSettings_MergesPatch(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	a, _ := setupApp(t, now)

	goal := 3
	saved, err := a.UpdateSettings(context.Background(), models.SettingsPatch{DailyGoal: &goal})
	require.NoError(t, err)
	assert.Equal(t, 3, saved.DailyGoal)
	assert.Equal(t, "light", saved.Theme)
	assert.Equal(t, 3, a.State().Settings.DailyGoal)
}

func TestSetTheme_MetaAndSettingsStayInStep(t *testing.T) {
	a, _ := setupApp(t, time.Now())
	ctx := context.Background()

	// before any toggle the theme comes from settings
	theme, err := a.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "light", theme)

	require.NoError(t, a.SetTheme(ctx, "dark"))

	theme, err = a.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
	assert.Equal(t, "dark", a.State().Settings.Theme)
}

func TestSync_GuestReportsPending(t *testing.T) {
	a, _ := setupApp(t, time.Now())
	ctx := context.Background()

	_, err := a.AddAffirmation(ctx, "money", "Title", "Text")
	require.NoError(t, err)

	res, err := a.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 1, res.Pending)
}
