// Package api is the single chokepoint for portal backend calls. It attaches
// the bearer token, normalizes the {success,data,message} response envelope,
// and maps transport failures to explicit errors.
package api

import (
	"context"

	"github.com/enyard/portal/internal/client/identity"
	"github.com/enyard/portal/internal/client/models"
)

// RegisterRequest creates an unverified account.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	RecaptchaToken  string `json:"recaptchaToken,omitempty"`
}

// LoginRequest is a password login.
type LoginRequest struct {
	Email      string              `json:"email"`
	Password   string              `json:"password"`
	DeviceID   string              `json:"deviceId,omitempty"`
	DeviceInfo identity.DeviceInfo `json:"deviceInfo,omitempty"`
}

// OTPRequest asks the backend to send an SMS code.
type OTPRequest struct {
	Phone          string `json:"phone"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// VerifyOTPRequest confirms an SMS code. Device identity is attached to both
// the registration and the passwordless variants.
type VerifyOTPRequest struct {
	Phone      string              `json:"phone"`
	OTP        string              `json:"otp"`
	DeviceID   string              `json:"deviceId"`
	DeviceInfo identity.DeviceInfo `json:"deviceInfo"`
}

// WaitingListRequest is the product waiting-list signup.
type WaitingListRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// AuthResult is the session material returned by login and OTP confirmation.
// User may be nil; callers then fetch it separately via CurrentUser.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// Client defines the backend operations used by the session store and the
// verification pipelines.
//
// All methods honor context cancellation. Application failures come back as
// *Error with the backend message verbatim; unreachable-server conditions as
// ErrUnavailable.
type Client interface {
	// Register creates an unverified account. No token is issued.
	Register(ctx context.Context, req RegisterRequest) error

	// VerifyEmail redeems a one-time email verification token and returns a
	// limited-scope bearer token, sufficient for phone verification only.
	VerifyEmail(ctx context.Context, token string) (string, error)

	// RequestOTP sends an SMS code for the registration flow
	// (bearer-authorized with the limited-scope token).
	RequestOTP(ctx context.Context, req OTPRequest) error

	// RequestLoginOTP sends an SMS code for passwordless login.
	RequestLoginOTP(ctx context.Context, req OTPRequest) error

	// VerifyOTP confirms the registration-flow code (bearer-authorized).
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (AuthResult, error)

	// VerifyLoginOTP confirms the passwordless-login code; the phone number
	// itself is the credential.
	VerifyLoginOTP(ctx context.Context, req VerifyOTPRequest) (AuthResult, error)

	// Login is a password login.
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)

	// AdminLogin is a password login against the admin portal.
	AdminLogin(ctx context.Context, email, password string) (AuthResult, error)

	// CurrentUser fetches the account record for the stored bearer token.
	CurrentUser(ctx context.Context) (*models.User, error)

	// JoinWaitingList signs the caller up for the product waiting list.
	JoinWaitingList(ctx context.Context, req WaitingListRequest) error
}
