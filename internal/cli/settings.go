package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wallethabit/affirmations/internal/models"
)

func (a *App) settings(ctx context.Context) {
	current := a.controller.State().Settings
	fmt.Printf("Daily goal: %d, reminder: %q, theme: %s\n",
		current.DailyGoal, current.ReminderTime, current.Theme)

	var patch models.SettingsPatch

	goal, err := GetOptionalInt(a.reader, "New daily goal (empty to keep)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if goal > 0 {
		patch.DailyGoal = &goal
	}
	reminder, err := GetSimpleText(a.reader, "New reminder HH:MM (empty to keep)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if reminder != "" {
		patch.ReminderTime = &reminder
	}

	if patch.DailyGoal == nil && patch.ReminderTime == nil {
		fmt.Println("Nothing to change.")
		return
	}

	saved, err := a.controller.UpdateSettings(ctx, patch)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Saved. Daily goal: %d, reminder: %q\n", saved.DailyGoal, saved.ReminderTime)
}

func (a *App) theme(ctx context.Context, theme string) {
	if theme != "light" && theme != "dark" {
		fmt.Println("Usage: theme <light|dark>")
		return
	}
	if err := a.controller.SetTheme(ctx, theme); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Theme set to %s\n", theme)
}
