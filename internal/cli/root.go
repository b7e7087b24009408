package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus(ctx context.Context) string {
	s := ""
	if a.gw != nil {
		if sess := a.gw.GetSession(); sess != nil {
			s = sess.Email + " "
		}
	}
	st, err := a.mon.Status(ctx)
	if err == nil {
		s += string(st.Mode)
		if st.Pending > 0 {
			s += fmt.Sprintf(", %d pending", st.Pending)
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the interactive command loop.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Affirmations CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("affirm %s> ", a.getStatus(ctx))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: list, add, edit, log, streak, settings, theme, status, sync, login, logout, exit")
		case "list":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "edit":
			if len(args) == 0 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			a.edit(ctx, args[0])
		case "log":
			a.logPractice(ctx)
		case "streak":
			a.streak(ctx)
		case "settings":
			a.settings(ctx)
		case "theme":
			if len(args) == 0 {
				fmt.Println("Usage: theme <light|dark>")
				continue
			}
			a.theme(ctx, args[0])
		case "status":
			a.status(ctx)
		case "sync":
			a.sync(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
