package api

import "errors"

var (
	// ErrUnavailable marks transport failures: the backend could not be
	// reached at all, as opposed to answering with an application error.
	ErrUnavailable = errors.New("cannot connect to server, please check that the backend is running")

	// ErrUnauthorized marks HTTP 401 responses (invalid or expired token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks HTTP 403 responses (account blocked).
	ErrForbidden = errors.New("forbidden")
)

// Error is an application-level failure reported by the backend. Message is
// the backend-supplied text verbatim when present, so callers can surface it
// to the user unmodified.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap maps the auth-relevant statuses to their sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *Error) Unwrap() error {
	switch e.Status {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	default:
		return nil
	}
}
