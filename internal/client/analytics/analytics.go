// Package analytics sends auth-flow instrumentation to Google Analytics via
// the GA4 Measurement Protocol. Everything here is strictly best-effort: a
// failed or unconfigured tracker never fails the operation being tracked.
package analytics

import "context"

// Tracker is the instrumentation surface the auth flows touch.
type Tracker interface {
	// TrackAuth records an authentication event: action is "login",
	// "logout" or "register"; method is "password" or "otp".
	TrackAuth(ctx context.Context, action, method string, success bool)

	// TrackFormSubmit records a form submission outcome.
	TrackFormSubmit(ctx context.Context, form, page string, success bool, params map[string]any)

	// TrackEvent records an arbitrary named event.
	TrackEvent(ctx context.Context, name string, params map[string]any)

	// SetUserID associates subsequent events with an authenticated user.
	SetUserID(ctx context.Context, id string)

	// ClearUserID drops the user association on logout.
	ClearUserID(ctx context.Context)
}

// Noop is the tracker used when no measurement id is configured.
type Noop struct{}

func (Noop) TrackAuth(context.Context, string, string, bool) {}

func (Noop) TrackFormSubmit(context.Context, string, string, bool, map[string]any) {}

func (Noop) TrackEvent(context.Context, string, map[string]any) {}

func (Noop) SetUserID(context.Context, string) {}

func (Noop) ClearUserID(context.Context) {}
