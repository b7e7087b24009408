package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wallethabit/affirmations/internal/models"
)

func (a *App) list(ctx context.Context) {
	state := a.controller.State()
	if len(state.Affirmations) == 0 {
		fmt.Println("No affirmations yet. Use 'add' to create one.")
		return
	}
	for _, item := range state.Affirmations {
		marker := " "
		if item.Custom {
			marker = "*"
		}
		fmt.Printf("%s %s  [%s] %s: %s\n", marker, item.ID, item.Category, item.Title, item.Text)
	}
}

func (a *App) add(ctx context.Context) {
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	text, err := GetSimpleText(a.reader, "Text", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	saved, err := a.controller.AddAffirmation(ctx, category, title, text)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Added %s\n", saved.ID)
}

func (a *App) edit(ctx context.Context, id string) {
	var patch models.AffirmationPatch

	title, err := GetSimpleText(a.reader, "New title (empty to keep)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if title != "" {
		patch.Title = &title
	}
	text, err := GetSimpleText(a.reader, "New text (empty to keep)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if text != "" {
		patch.Text = &text
	}

	saved, err := a.controller.EditAffirmation(ctx, id, patch)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Updated %s\n", saved.ID)
}
