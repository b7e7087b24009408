package models

import (
	"time"

	"github.com/google/uuid"
)

// PracticeMode classifies how an affirmation was practiced.
type PracticeMode string

const (
	ModeReading   PracticeMode = "reading"
	ModeSpeaking  PracticeMode = "speaking"
	ModeWriting   PracticeMode = "writing"
	ModeListening PracticeMode = "listening"
)

// DayFormat is the layout of PracticedAt: a UTC calendar day.
const DayFormat = "2006-01-02"

// Session records one practice of an affirmation on a given day.
//
// The backend enforces uniqueness on (user_id, affirmation_id, practiced_at,
// mode), so logging the same practice twice upserts rather than duplicates.
type Session struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id,omitempty"`
	AffirmationID string `json:"affirmation_id"`

	// PracticedAt is the practice day in DayFormat ("YYYY-MM-DD", UTC).
	PracticedAt string       `json:"practiced_at"`
	Mode        PracticeMode `json:"mode"`

	// MoodBefore/MoodAfter are 1 to 5 self-ratings; 0 means not answered.
	MoodBefore int    `json:"mood_before,omitempty"`
	MoodAfter  int    `json:"mood_after,omitempty"`
	Notes      string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession constructs a practice session for the given day.
func NewSession(affirmationID string, mode PracticeMode, day time.Time, now time.Time) Session {
	now = now.UTC()
	return Session{
		ID:            uuid.NewString(),
		AffirmationID: affirmationID,
		PracticedAt:   day.UTC().Format(DayFormat),
		Mode:          mode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
