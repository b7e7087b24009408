// Package models defines the client-side record types synchronized between
// the local store and the remote backend. Every record carries a client-
// generated id and an updated_at stamp used for last-write-wins
// reconciliation.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Affirmation is a short statement the user practices.
type Affirmation struct {
	// ID is a globally unique identifier, assigned by the client at
	// creation time and immutable afterwards.
	ID string `json:"id"`

	// UserID references the authenticated owner; empty in guest mode.
	UserID string `json:"user_id,omitempty"`

	// Category groups affirmations (e.g. "money", "habits", "confidence").
	Category string `json:"category"`

	Title string `json:"title"`
	Text  string `json:"text"`

	// Custom marks user-created affirmations (as opposed to the built-in set).
	Custom bool `json:"custom"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AffirmationPatch carries optional field updates. Nil fields are left
// untouched by Apply.
type AffirmationPatch struct {
	Category *string `json:"category,omitempty"`
	Title    *string `json:"title,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// NewAffirmation constructs a custom affirmation with a fresh id and
// creation/update stamps set to now (UTC).
func NewAffirmation(category, title, text string, now time.Time) Affirmation {
	now = now.UTC()
	return Affirmation{
		ID:        uuid.NewString(),
		Category:  category,
		Title:     title,
		Text:      text,
		Custom:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply merges the patch into the affirmation and rewrites UpdatedAt.
func (a *Affirmation) Apply(p AffirmationPatch, now time.Time) {
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Text != nil {
		a.Text = *p.Text
	}
	a.UpdatedAt = now.UTC()
}
