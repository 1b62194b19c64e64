// Package cli provides the interactive portal command-line client.
//
// It wires configuration, local storage, the backend gateway, the session
// store, and the verification pipeline into an interactive REPL. On startup a
// previously stored session is restored immediately and reconciled against
// the server in the background.
//
// Key features:
//   - Register / email verification / phone verification (two-factor onboarding)
//   - Password, passwordless (SMS) and admin login
//   - Session inspection (whoami, checkauth) and logout
//   - Waiting-list signup that survives a login redirect
//   - Device identity display and reset
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
