package pipeline

import (
	"context"

	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/recaptcha"
	"github.com/enyard/portal/internal/client/storage"
)

// RequestLoginOTP starts a passwordless login for an existing user. The
// CAPTCHA token is acquired immediately before submission; a configured
// provider that yields no token blocks the submission instead of silently
// skipping the check.
func (p *Pipeline) RequestLoginOTP(ctx context.Context, countryCode, number string) error {
	phone, err := NormalizePhone(countryCode, number)
	if err != nil {
		return err
	}

	captchaToken, err := recaptcha.Fresh(ctx, p.captcha, "passwordless_login")
	if err != nil {
		return err
	}

	if err := p.api.RequestLoginOTP(ctx, api.OTPRequest{Phone: phone, RecaptchaToken: captchaToken}); err != nil {
		return err
	}

	// Persisted transiently so the OTP confirmation step knows which number
	// the code was sent to.
	return p.repo.Set(ctx, storage.KeyPhone, []byte(phone))
}
