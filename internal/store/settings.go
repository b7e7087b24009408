package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wallethabit/affirmations/internal/common"
	"github.com/wallethabit/affirmations/internal/dbx"
	"github.com/wallethabit/affirmations/internal/models"
)

// SettingsRepository persists the single local settings record.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings record or common.ErrNotFound on a fresh install.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `SELECT id, user_id, daily_goal, reminder_time, theme, created_at, updated_at
		FROM settings LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	var s models.Settings
	var created, updated string
	err := row.Scan(&s.ID, &s.UserID, &s.DailyGoal, &s.ReminderTime, &s.Theme, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	return &s, nil
}

// Save replaces the settings record wholesale. Only one row ever exists.
func (r *SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		query := `INSERT INTO settings (id, user_id, daily_goal, reminder_time, theme, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			s.ID, s.UserID, s.DailyGoal, s.ReminderTime, s.Theme,
			formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return nil
	})
}
