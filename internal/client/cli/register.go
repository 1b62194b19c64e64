package cli

import (
	"context"
	"os"

	"github.com/enyard/portal/internal/client/pipeline"
	"github.com/enyard/portal/internal/shared"
)

// Register prompts for the registration form and creates an unverified
// account. Passwords are read without echo and wiped before returning.
//
// On success the user is told to follow the emailed verification link; no
// session exists yet at that point.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(confirm)

	err = a.pipe.Register(ctx, pipeline.RegisterInput{
		Name:            name,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	})
	if err != nil {
		return err
	}

	printlnFn("Account created. Check your email for the verification link,")
	printlnFn("then run: verify-email <token>")
	return nil
}

// VerifyEmail redeems the token from the verification link. Redeeming a link
// that was already used still reports success.
func (a *App) VerifyEmail(ctx context.Context, token string) error {
	if err := a.pipe.VerifyEmail(ctx, token); err != nil {
		return err
	}
	printlnFn("Email verified. Next step: phone")
	return nil
}

// Phone prompts for a phone number and requests an SMS verification code.
func (a *App) Phone(ctx context.Context) error {
	country, err := getSimpleText(a.reader, "Enter country code (e.g. +91)", os.Stdout)
	if err != nil {
		return err
	}

	number, err := getSimpleText(a.reader, "Enter 10-digit phone number", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.pipe.RequestPhoneOTP(ctx, country, number); err != nil {
		return err
	}

	printlnFn("OTP sent. Next step: otp")
	return nil
}

// OTP prompts for the 6-digit code and confirms whichever flow is in
// progress (registration phone verification or passwordless login).
func (a *App) OTP(ctx context.Context) error {
	line, err := getSimpleText(a.reader, "Enter the 6-digit code", os.Stdout)
	if err != nil {
		return err
	}

	code, ok := collectOTP(line)
	if !ok {
		return pipeline.ErrIncompleteOTP
	}

	if err := a.pipe.ConfirmOTP(ctx, code); err != nil {
		return err
	}

	printlnFn("Success!")
	a.afterLogin(ctx)
	return nil
}

// collectOTP feeds the typed line through the OTP collector, keeping digits
// and honoring backspaces, and reports whether a complete code was entered.
func collectOTP(line string) (string, bool) {
	var in pipeline.OTPInput
	for _, r := range line {
		switch {
		case r >= '0' && r <= '9':
			in.Enter(byte(r))
		case r == '\b':
			in.Backspace()
		}
	}
	return in.Code(), in.Complete()
}
