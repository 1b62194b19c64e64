// Package pipeline drives the portal's identity flows: the two-factor
// onboarding sequence (register, email verification, phone verification,
// OTP confirmation), passwordless login, and the waiting-list signup that
// survives an authentication redirect.
//
// Steps are strictly sequential; no step issues its backend call before the
// previous one completed. Failures carry the backend message verbatim and
// are never retried automatically.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/enyard/portal/internal/client/analytics"
	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/identity"
	"github.com/enyard/portal/internal/client/recaptcha"
	"github.com/enyard/portal/internal/client/session"
	"github.com/enyard/portal/internal/client/storage"
	"github.com/enyard/portal/internal/logging"
)

// Pipeline orchestrates the verification and passwordless login flows.
type Pipeline struct {
	api     api.Client
	store   *session.Store
	repo    storage.Repository
	device  *identity.Provider
	captcha recaptcha.Provider
	tracker analytics.Tracker
	log     logging.Logger
}

func New(apiClient api.Client, store *session.Store, repo storage.Repository, device *identity.Provider, captcha recaptcha.Provider, tracker analytics.Tracker, log logging.Logger) *Pipeline {
	return &Pipeline{
		api:     apiClient,
		store:   store,
		repo:    repo,
		device:  device,
		captcha: captcha,
		tracker: tracker,
		log:     log,
	}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates an unverified account. Password rules are checked before
// any network call; the CAPTCHA token is acquired fresh for this submission.
// On success the account exists server-side but no token is issued: the user
// must follow the emailed verification link.
func (p *Pipeline) Register(ctx context.Context, in RegisterInput) error {
	if err := ValidatePassword(in.Password, in.ConfirmPassword); err != nil {
		return err
	}

	token, err := recaptcha.Fresh(ctx, p.captcha, "register")
	if err != nil {
		return err
	}

	err = p.api.Register(ctx, api.RegisterRequest{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		RecaptchaToken:  token,
	})
	p.tracker.TrackFormSubmit(ctx, "register", "/auth/register", err == nil, nil)
	if err != nil {
		return err
	}

	p.tracker.TrackAuth(ctx, "register", "password", true)
	return nil
}

// VerifyEmail redeems the one-time token from the verification link and
// persists the returned limited-scope bearer token for the phone step.
//
// Redeeming an already-used token is success, not failure: the link gets
// opened twice routinely (page reloads, a second tab), and the terminal
// state is the same either way.
func (p *Pipeline) VerifyEmail(ctx context.Context, token string) error {
	limited, err := p.api.VerifyEmail(ctx, token)
	if err != nil {
		if isAlreadyVerified(err) {
			p.log.Info(ctx, "email verification token already redeemed, treating as verified")
			return nil
		}
		return err
	}

	if limited != "" {
		if err := p.store.SetToken(ctx, limited); err != nil {
			return err
		}
	}
	return nil
}

// RequestPhoneOTP asks for an SMS code in the registration flow. It requires
// the limited-scope token from email verification; without one the caller
// should route the user back to that step (ErrEmailNotVerified).
func (p *Pipeline) RequestPhoneOTP(ctx context.Context, countryCode, number string) error {
	if p.store.Token(ctx) == "" {
		return ErrEmailNotVerified
	}

	phone, err := NormalizePhone(countryCode, number)
	if err != nil {
		return err
	}

	captchaToken, err := recaptcha.Fresh(ctx, p.captcha, "phone_verification")
	if err != nil {
		return err
	}

	if err := p.api.RequestOTP(ctx, api.OTPRequest{Phone: phone, RecaptchaToken: captchaToken}); err != nil {
		return err
	}

	// Stored for the confirmation step; cleared once the OTP is accepted.
	return p.repo.Set(ctx, storage.KeyPhone, []byte(phone))
}

// ConfirmOTP submits the 6-digit code for whichever flow is in progress.
// A stored bearer token selects the registration branch (phone verification,
// bearer-authorized); otherwise this is a passwordless login and the phone
// number itself is the credential. Device identity is attached to both.
func (p *Pipeline) ConfirmOTP(ctx context.Context, code string) error {
	if err := ValidateOTP(code); err != nil {
		return err
	}

	phoneRaw, err := p.repo.Get(ctx, storage.KeyPhone)
	if err != nil {
		return err
	}
	if len(phoneRaw) == 0 {
		return ErrPhoneMissing
	}
	phone := string(phoneRaw)

	req := api.VerifyOTPRequest{Phone: phone, OTP: code}
	if info, derr := p.device.Info(ctx); derr == nil {
		req.DeviceID = info.DeviceID
		req.DeviceInfo = info
	} else {
		p.log.Debug(ctx, "device identity unavailable", "error", derr)
	}

	registration := p.store.Token(ctx) != ""

	var res api.AuthResult
	if registration {
		res, err = p.api.VerifyOTP(ctx, req)
	} else {
		res, err = p.api.VerifyLoginOTP(ctx, req)
	}
	if err != nil {
		p.tracker.TrackAuth(ctx, "login", "otp", false)
		p.tracker.TrackFormSubmit(ctx, "otp_verification", "/auth/otp-verification", false, map[string]any{"phone": phone})
		return err
	}

	if err := p.store.AdoptSession(ctx, res, "otp"); err != nil {
		return err
	}

	// The token is the session credential; the user record is a nicety we
	// can fetch separately if the response omitted it.
	if res.User == nil {
		if user, uerr := p.api.CurrentUser(ctx); uerr == nil {
			if serr := p.store.SetUser(ctx, user); serr != nil {
				p.log.Warn(ctx, "failed to cache fetched user", "error", serr)
			}
		} else {
			p.log.Warn(ctx, "failed to fetch user after otp confirmation", "error", uerr)
		}
	}

	action := "login"
	if registration {
		action = "register"
	}
	p.tracker.TrackAuth(ctx, action, "otp", true)
	p.tracker.TrackFormSubmit(ctx, "otp_verification", "/auth/otp-verification", true, map[string]any{"phone": phone})

	if err := p.repo.Delete(ctx, storage.KeyPhone); err != nil {
		p.log.Warn(ctx, "failed to clear stored phone", "error", err)
	}
	return nil
}

// isAlreadyVerified classifies the backend's replay answer on email-token
// redemption.
func isAlreadyVerified(err error) bool {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "already verified") || strings.Contains(msg, "already used")
}
