package models

import (
	"time"

	"github.com/google/uuid"
)

// Settings holds per-user preferences. Remotely it is a single row keyed by
// user_id (upsert semantics); locally there is at most one record.
type Settings struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`

	// DailyGoal is the target number of practice sessions per day.
	DailyGoal int `json:"daily_goal"`

	// ReminderTime is an "HH:MM" local-time reminder, empty when disabled.
	ReminderTime string `json:"reminder_time,omitempty"`

	// Theme is the UI theme preference ("light" or "dark").
	Theme string `json:"theme"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingsPatch carries optional settings updates; nil fields are untouched.
type SettingsPatch struct {
	DailyGoal    *int    `json:"daily_goal,omitempty"`
	ReminderTime *string `json:"reminder_time,omitempty"`
	Theme        *string `json:"theme,omitempty"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings(now time.Time) Settings {
	now = now.UTC()
	return Settings{
		ID:        uuid.NewString(),
		DailyGoal: 1,
		Theme:     "light",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply merges the patch into the settings and rewrites UpdatedAt.
func (s *Settings) Apply(p SettingsPatch, now time.Time) {
	if p.DailyGoal != nil {
		s.DailyGoal = *p.DailyGoal
	}
	if p.ReminderTime != nil {
		s.ReminderTime = *p.ReminderTime
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	s.UpdatedAt = now.UTC()
}
