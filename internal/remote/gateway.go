// Package remote abstracts the backend CRUD/auth API the client syncs with.
// The concrete implementation talks to a Supabase-compatible REST/auth
// service; the sync engine only depends on the Gateway contract and treats
// every failure as "try again later".
package remote

import (
	"context"
	"time"

	"github.com/wallethabit/affirmations/internal/models"
)

// Session is an authenticated backend session.
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	ExpiresAt   time.Time
}

// Valid reports whether the session can still be used at the given time.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// Gateway is the remote collaborator contract. All calls are network-bound
// and may fail with common.ErrUnavailable or common.ErrUnauthorized.
type Gateway interface {
	// Affirmations.
	CreateAffirmation(ctx context.Context, a models.Affirmation) (*models.Affirmation, error)
	UpdateAffirmation(ctx context.Context, id string, a models.Affirmation) (*models.Affirmation, error)
	ListAffirmations(ctx context.Context) ([]models.Affirmation, error)

	// Practice sessions. LogSession upserts on the backend conflict key
	// (user_id, affirmation_id, practiced_at, mode); ListSessions returns
	// the most recent year, practiced_at descending.
	LogSession(ctx context.Context, s models.Session) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)

	// Settings, one row per user.
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpsertSettings(ctx context.Context, s models.Settings) (*models.Settings, error)

	// Auth lifecycle.
	GetSession() *Session
	OnSessionChange(fn func(*Session))
	SignInWithMagicLink(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*Session, error)
	SignOut(ctx context.Context) error

	// Ping checks backend reachability without touching any collection.
	Ping(ctx context.Context) error

	Close() error
}
