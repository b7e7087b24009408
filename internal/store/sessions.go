package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wallethabit/affirmations/internal/dbx"
	"github.com/wallethabit/affirmations/internal/models"
)

// SessionRepository persists practice sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns all sessions, most recent practice day first.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	query := `SELECT id, user_id, affirmation_id, practiced_at, mode, mood_before, mood_after, notes, created_at, updated_at
		FROM sessions ORDER BY practiced_at DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert inserts or fully overwrites a session by id.
func (r *SessionRepository) Upsert(ctx context.Context, s models.Session) error {
	return upsertSession(ctx, r.db, s)
}

// ReplaceAll overwrites the whole collection inside a single transaction.
func (r *SessionRepository) ReplaceAll(ctx context.Context, list []models.Session) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}
		for _, s := range list {
			if err := upsertSession(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertSession(ctx context.Context, db dbx.DBTX, s models.Session) error {
	query := `INSERT INTO sessions (id, user_id, affirmation_id, practiced_at, mode, mood_before, mood_after, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
			affirmation_id = excluded.affirmation_id,
			practiced_at = excluded.practiced_at,
			mode = excluded.mode,
			mood_before = excluded.mood_before,
			mood_after = excluded.mood_after,
			notes = excluded.notes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query,
		s.ID, s.UserID, s.AffirmationID, s.PracticedAt, string(s.Mode),
		s.MoodBefore, s.MoodAfter, s.Notes,
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var mode, created, updated string
	if err := row.Scan(&s.ID, &s.UserID, &s.AffirmationID, &s.PracticedAt, &mode,
		&s.MoodBefore, &s.MoodAfter, &s.Notes, &created, &updated); err != nil {
		return models.Session{}, err
	}
	s.Mode = models.PracticeMode(mode)
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	return s, nil
}
