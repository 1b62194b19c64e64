package cli

import (
	"context"
	"os"
)

// Passwordless prompts for a phone number and requests an SMS login code for
// an existing account. The code is confirmed with the otp command.
func (a *App) Passwordless(ctx context.Context) error {
	country, err := getSimpleText(a.reader, "Enter country code (e.g. +91)", os.Stdout)
	if err != nil {
		return err
	}

	number, err := getSimpleText(a.reader, "Enter 10-digit phone number", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.pipe.RequestLoginOTP(ctx, country, number); err != nil {
		return err
	}

	printlnFn("OTP sent. Next step: otp")
	return nil
}
