package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/enyard/portal/internal/client/session"
	"github.com/enyard/portal/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for an email and password and performs a password login.
//
// The password byte slice is securely wiped before returning. On success the
// session is persisted and any waiting-list form saved before the auth
// redirect is resubmitted.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.store.Login(ctx, email, string(password)); err != nil {
		return err
	}

	printlnFn("Success!")
	a.afterLogin(ctx)
	return nil
}

// AdminLogin prompts for credentials and logs in against the admin portal.
func (a *App) AdminLogin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter admin email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.store.AdminLogin(ctx, email, string(password)); err != nil {
		return err
	}

	printlnFn("Success!")
	a.afterLogin(ctx)
	return nil
}

// Logout clears the persisted session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}

// Whoami prints the current session and device identity.
func (a *App) Whoami(ctx context.Context) error {
	user := a.store.User()
	if user == nil {
		printlnFn("Not logged in.")
	} else {
		printlnFn(fmt.Sprintf("User:  %s <%s>", user.DisplayName(), user.Email))
		printlnFn(fmt.Sprintf("Stage: %s", user.Stage()))
		if user.Role != "" {
			printlnFn(fmt.Sprintf("Role:  %s", user.Role))
		}
	}
	printlnFn(fmt.Sprintf("State: %s", a.store.State()))

	if info, ok := session.InspectToken(a.store.Token(ctx)); ok {
		printlnFn(fmt.Sprintf("Token: subject=%s scope=%s expires=%s", info.Subject, info.Scope, info.ExpiresAt))
	}

	if id, err := a.device.DeviceID(ctx); err == nil {
		printlnFn(fmt.Sprintf("Device: %s", id))
	}
	return nil
}

// CheckAuth reconciles the session against the server and reports the result.
func (a *App) CheckAuth(ctx context.Context) error {
	if err := a.store.CheckAuth(ctx); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("State: %s", a.store.State()))
	return nil
}
