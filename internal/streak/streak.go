// Package streak computes the practice streak from session history.
package streak

import (
	"time"

	"github.com/wallethabit/affirmations/internal/models"
)

// Result is the derived streak snapshot.
type Result struct {
	// Streak counts consecutive UTC calendar days with at least one
	// practice session, walked backward from today.
	Streak int `json:"streak"`

	// LastPracticeDate is the most recent practice day ("YYYY-MM-DD"),
	// regardless of streak length. Empty when no sessions exist.
	LastPracticeDate string `json:"last_practice_date,omitempty"`
}

// Compute derives the streak from the given sessions. The caller injects
// "today" so the result is deterministic; only the UTC calendar day of today
// matters. The walk starts at today and stops at the first day without a
// session, so a day not yet practiced yields a zero streak.
func Compute(sessions []models.Session, today time.Time) Result {
	days := make(map[string]struct{}, len(sessions))
	last := ""
	for _, s := range sessions {
		if s.PracticedAt == "" {
			continue
		}
		days[s.PracticedAt] = struct{}{}
		if s.PracticedAt > last {
			last = s.PracticedAt
		}
	}

	res := Result{LastPracticeDate: last}

	day := time.Date(today.UTC().Year(), today.UTC().Month(), today.UTC().Day(), 0, 0, 0, 0, time.UTC)
	for {
		if _, ok := days[day.Format(models.DayFormat)]; !ok {
			break
		}
		res.Streak++
		day = day.AddDate(0, 0, -1)
	}

	return res
}
