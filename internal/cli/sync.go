package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) sync(ctx context.Context) {
	res, err := a.controller.Sync(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	switch {
	case res.CaughtUp && res.Pulled:
		fmt.Println("Caught up, fully synced.")
	case res.CaughtUp:
		fmt.Println("Caught up (nothing queued).")
	case res.Skipped:
		fmt.Printf("Not signed in; %d item(s) pending. Use 'login' to sync.\n", res.Pending)
	default:
		fmt.Printf("Flushed %d/%d item(s); %d pending", res.Succeeded, res.Attempted, res.Pending)
		if res.Pulled {
			fmt.Print("; refreshed from remote")
		} else {
			fmt.Print("; refresh failed, data available offline")
		}
		fmt.Println(".")
	}
}

func (a *App) status(ctx context.Context) {
	st, err := a.mon.Status(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Printf("Mode: %s, signed in: %v, pending: %d\n", st.Mode, st.Authenticated, st.Pending)
	streak := a.controller.State().Streak
	fmt.Printf("Streak: %d day(s)\n", streak.Streak)
}
