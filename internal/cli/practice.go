package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wallethabit/affirmations/internal/models"
)

func (a *App) logPractice(ctx context.Context) {
	id, err := GetSimpleText(a.reader, "Affirmation id", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	mode, err := GetSimpleText(a.reader, "Mode (reading|speaking|writing|listening)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	moodBefore, err := GetOptionalInt(a.reader, "Mood before 1-5 (empty to skip)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	moodAfter, err := GetOptionalInt(a.reader, "Mood after 1-5 (empty to skip)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	notes, err := GetSimpleText(a.reader, "Notes (empty to skip)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	res, err := a.controller.LogSession(ctx, id, models.PracticeMode(mode), moodBefore, moodAfter, notes)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Logged. Current streak: %d day(s)\n", res.Streak)
}

func (a *App) streak(ctx context.Context) {
	res := a.controller.State().Streak
	if res.LastPracticeDate == "" {
		fmt.Println("No practice sessions yet.")
		return
	}
	fmt.Printf("Streak: %d day(s), last practice: %s\n", res.Streak, res.LastPracticeDate)
}
