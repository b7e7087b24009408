package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Login runs the passwordless flow: request a magic-link/OTP email, then
// verify the emailed code. A successful verify fires the session-change
// subscription, which triggers the first flush.
func (a *App) Login(ctx context.Context) {
	if a.gw == nil {
		fmt.Println("Guest mode: no remote backend configured.")
		return
	}

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.gw.SignInWithMagicLink(ctx, email); err != nil {
		log.Printf("Could not request sign-in link: %v", err)
		return
	}
	fmt.Println("Check your inbox for the sign-in code.")

	code, err := GetSimpleText(a.reader, "Enter code", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	session, err := a.gw.VerifyOTP(ctx, email, code)
	if err != nil {
		log.Printf("Sign-in unsuccessful: %v", err)
		return
	}
	fmt.Printf("Signed in as %s\n", session.Email)
}

func (a *App) Logout(ctx context.Context) {
	if a.gw == nil {
		return
	}
	if err := a.gw.SignOut(ctx); err != nil {
		log.Printf("Sign-out call failed (session cleared locally): %v", err)
		return
	}
	fmt.Println("Signed out.")
}
