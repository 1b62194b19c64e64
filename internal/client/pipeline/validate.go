package pipeline

import (
	"errors"
	"strings"
)

// Client-side validation failures. These are reported before any network
// call is issued.
var (
	ErrPasswordMismatch = errors.New("passwords don't match")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidPhone     = errors.New("enter a valid 10-digit phone number")
	ErrIncompleteOTP    = errors.New("please enter the complete 6-digit OTP")

	// ErrEmailNotVerified means the limited-scope token from email
	// verification is missing; the caller should send the user back to that
	// step rather than show an error.
	ErrEmailNotVerified = errors.New("please verify your email first")

	// ErrPhoneMissing means no phone number was stored by a request-OTP
	// step; the caller should restart the flow.
	ErrPhoneMissing = errors.New("phone number not found, please try again")
)

// ValidatePassword applies the registration password rules.
func ValidatePassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// NormalizePhone strips non-digits from number, requires exactly ten digits,
// and prepends the country code.
func NormalizePhone(countryCode, number string) (string, error) {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() != 10 {
		return "", ErrInvalidPhone
	}
	return countryCode + digits.String(), nil
}

// ValidateOTP requires exactly six digits.
func ValidateOTP(code string) error {
	if len(code) != 6 {
		return ErrIncompleteOTP
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrIncompleteOTP
		}
	}
	return nil
}
