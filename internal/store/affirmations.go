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

// AffirmationRepository persists the affirmations collection.
type AffirmationRepository struct {
	db *sql.DB
}

func NewAffirmationRepository(db *sql.DB) *AffirmationRepository {
	return &AffirmationRepository{db: db}
}

// List returns all affirmations, newest first.
func (r *AffirmationRepository) List(ctx context.Context) ([]models.Affirmation, error) {
	query := `SELECT id, user_id, category, title, text, custom, created_at, updated_at
		FROM affirmations ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select affirmations: %w", err)
	}
	defer rows.Close()

	var result []models.Affirmation
	for rows.Next() {
		a, err := scanAffirmation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns a single affirmation or common.ErrNotFound.
func (r *AffirmationRepository) GetByID(ctx context.Context, id string) (*models.Affirmation, error) {
	query := `SELECT id, user_id, category, title, text, custom, created_at, updated_at
		FROM affirmations WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	a, err := scanAffirmation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get affirmation: %w", err)
	}
	return &a, nil
}

// Upsert inserts or fully overwrites an affirmation by id.
func (r *AffirmationRepository) Upsert(ctx context.Context, a models.Affirmation) error {
	return upsertAffirmation(ctx, r.db, a)
}

// ReplaceAll overwrites the whole collection with the given records inside a
// single transaction. Callers pass the complete desired list; there is no
// partial merge.
func (r *AffirmationRepository) ReplaceAll(ctx context.Context, list []models.Affirmation) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM affirmations`); err != nil {
			return fmt.Errorf("failed to clear affirmations: %w", err)
		}
		for _, a := range list {
			if err := upsertAffirmation(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertAffirmation(ctx context.Context, db dbx.DBTX, a models.Affirmation) error {
	query := `INSERT INTO affirmations (id, user_id, category, title, text, custom, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
			category = excluded.category,
			title = excluded.title,
			text = excluded.text,
			custom = excluded.custom,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Category, a.Title, a.Text, a.Custom,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert affirmation: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAffirmation(row rowScanner) (models.Affirmation, error) {
	var a models.Affirmation
	var created, updated string
	if err := row.Scan(&a.ID, &a.UserID, &a.Category, &a.Title, &a.Text, &a.Custom, &created, &updated); err != nil {
		return models.Affirmation{}, err
	}
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return a, nil
}
