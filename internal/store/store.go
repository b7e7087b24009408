// Package store implements the durable local persistence layer: SQLite-backed
// repositories for each collection plus the mutation queue. The store works
// regardless of network state; failures here are hard errors surfaced to the
// caller, there is no fallback path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/wallethabit/affirmations/internal/store/migrations"
)

// Store bundles the database handle with the collection repositories.
type Store struct {
	DB *sql.DB

	Affirmations *AffirmationRepository
	Sessions     *SessionRepository
	Settings     *SettingsRepository
	Queue        *QueueRepository
	Meta         *MetaRepository
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the local database at dsn, runs migrations and
// returns the ready-to-use store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate local db: %w", err)
	}

	return &Store{
		DB:           db,
		Affirmations: NewAffirmationRepository(db),
		Sessions:     NewSessionRepository(db),
		Settings:     NewSettingsRepository(db),
		Queue:        NewQueueRepository(db),
		Meta:         NewMetaRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}

// timestamps are persisted as RFC3339 text columns.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
