package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) error
	Phone(ctx context.Context) error
	OTP(ctx context.Context) error
	Login(ctx context.Context) error
	Passwordless(ctx context.Context) error
	AdminLogin(ctx context.Context) error
	Whoami(ctx context.Context) error
	CheckAuth(ctx context.Context) error
	Waitlist(ctx context.Context) error
	ResetDevice(ctx context.Context) error
	Logout(ctx context.Context) error
}

const helpLoggedOut = "Available commands: register, verify-email <token>, phone, otp, login, passwordless, admin-login, waitlist, whoami, reset-device, exit"
const helpLoggedIn = "Available commands: whoami, checkauth, waitlist, reset-device, logout, exit"

// runREPL starts a simple read-eval-print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                  — show available commands
//	  - register              — create an account (email verification follows)
//	  - verify-email <token>  — redeem the emailed verification token
//	  - phone                 — request an SMS code for phone verification
//	  - otp                   — confirm the SMS code
//	  - login                 — password login
//	  - passwordless          — request an SMS login code
//	  - admin-login           — password login against the admin portal
//	  - exit | quit           — leave the program
//
//	Logged in:
//	  - whoami                — show the current user and device identity
//	  - checkauth             — reconcile the session against the server
//	  - waitlist              — join the product waiting list
//	  - reset-device          — discard and regenerate the device identity
//	  - logout                — clear the session
//	  - exit | quit           — leave the program
//
// Errors returned by command handlers are printed and the loop continues;
// a failed command never terminates the REPL.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("portal> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			err = a.Register(ctx)

		case "verify-email":
			if len(args) == 0 {
				printlnFn("Usage: verify-email <token>")
				continue
			}
			err = a.VerifyEmail(ctx, args[0])

		case "phone":
			err = a.Phone(ctx)

		case "otp":
			err = a.OTP(ctx)

		case "login":
			err = a.Login(ctx)

		case "passwordless":
			err = a.Passwordless(ctx)

		case "admin-login":
			err = a.AdminLogin(ctx)

		case "whoami":
			err = a.Whoami(ctx)

		case "checkauth":
			err = a.CheckAuth(ctx)

		case "waitlist":
			err = a.Waitlist(ctx)

		case "reset-device":
			err = a.ResetDevice(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
