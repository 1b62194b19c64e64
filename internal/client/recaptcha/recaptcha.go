// Package recaptcha abstracts CAPTCHA token acquisition for gated backend
// calls. Tokens are short-lived and single-use, so callers request a fresh
// one immediately before each submission instead of reusing a stale value.
package recaptcha

import (
	"context"
	"errors"
)

// ErrNoToken is returned when a configured provider could not produce a
// token. Gated submissions are blocked in that case, never silently sent
// without one.
var ErrNoToken = errors.New("recaptcha token unavailable, please try again")

// Provider produces CAPTCHA tokens for a named action ("register",
// "phone_verification", "passwordless_login", ...).
type Provider interface {
	// Enabled reports whether CAPTCHA is configured at all. When false,
	// gated calls proceed without a token and the backend decides.
	Enabled() bool

	// Execute obtains a fresh token for the given action.
	Execute(ctx context.Context, action string) (string, error)
}

// Fresh obtains a token for a gated submission. With a disabled provider it
// returns an empty token and no error; with an enabled one it fails unless a
// non-empty token was produced.
func Fresh(ctx context.Context, p Provider, action string) (string, error) {
	if p == nil || !p.Enabled() {
		return "", nil
	}
	token, err := p.Execute(ctx, action)
	if err != nil {
		return "", errors.Join(ErrNoToken, err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Disabled is the provider used when no site key is configured.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Execute(context.Context, string) (string, error) { return "", nil }

// FuncProvider adapts a token-producing function, e.g. one that shells out
// to a browser helper or forwards a token minted elsewhere.
type FuncProvider func(ctx context.Context, action string) (string, error)

func (FuncProvider) Enabled() bool { return true }

func (f FuncProvider) Execute(ctx context.Context, action string) (string, error) {
	return f(ctx, action)
}

// Static always returns the same token. Intended for tests and for setups
// where an out-of-band component supplies the token.
type Static string

func (s Static) Enabled() bool { return s != "" }

func (s Static) Execute(context.Context, string) (string, error) { return string(s), nil }
