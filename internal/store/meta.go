package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wallethabit/affirmations/internal/dbx"
)

// Meta keys used by the client.
const (
	MetaTheme       = "theme"
	MetaStreakCache = "streak_cache"
	MetaLastSyncAt  = "last_sync_at"
)

// MetaRepository is a small key/value table for client-local state that is
// not part of any synced collection (theme, cached streak, last sync time).
type MetaRepository struct {
	db dbx.DBTX
}

func NewMetaRepository(db dbx.DBTX) *MetaRepository {
	return &MetaRepository{db: db}
}

// Get returns the value for key, or nil when the key is absent.
func (r *MetaRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meta[%s]: %w", key, err)
	}
	return value, nil
}

func (r *MetaRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta[%s]: %w", key, err)
	}
	return nil
}

func (r *MetaRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete meta[%s]: %w", key, err)
	}
	return nil
}
