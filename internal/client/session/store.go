// Package session owns the authenticated-client state: the bearer token, the
// cached user record, and the tri-state authentication lifecycle. It is the
// single writer of the auth_token and auth_user storage keys; every other
// component mutates session state only through the operations here.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/enyard/portal/internal/client/analytics"
	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/identity"
	"github.com/enyard/portal/internal/client/models"
	"github.com/enyard/portal/internal/client/storage"
	"github.com/enyard/portal/internal/logging"
)

// AuthState is the authentication lifecycle state.
//
// Optimistic means credentials were restored from local storage and grant
// access until the server confirms or denies them; only a server-confirmed
// 401/403 demotes it to Unauthenticated, a transient failure does not.
type AuthState string

const (
	StateUnauthenticated AuthState = "unauthenticated"
	StateOptimistic      AuthState = "optimistic"
	StateVerified        AuthState = "verified"
)

// Store is the single source of truth for "who is logged in".
type Store struct {
	api     api.Client
	repo    storage.Repository
	device  *identity.Provider
	tracker analytics.Tracker
	log     logging.Logger

	mu    sync.Mutex
	token string
	user  *models.User
	state AuthState
}

func NewStore(apiClient api.Client, repo storage.Repository, device *identity.Provider, tracker analytics.Tracker, log logging.Logger) *Store {
	return &Store{
		api:     apiClient,
		repo:    repo,
		device:  device,
		tracker: tracker,
		log:     log,
		state:   StateUnauthenticated,
	}
}

// Token returns the current bearer token, or "". Suitable as the gateway's
// token source.
func (s *Store) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated holds exactly when both a token and a user are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// Restore rehydrates the session from local storage at process start. With
// both token and user present the state becomes Optimistic: usable
// immediately, reconciled later by CheckAuth.
func (s *Store) Restore(ctx context.Context) error {
	tok, err := s.repo.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("failed to restore token: %w", err)
	}
	rawUser, err := s.repo.Get(ctx, storage.KeyAuthUser)
	if err != nil {
		return fmt.Errorf("failed to restore user: %w", err)
	}

	var user *models.User
	if len(rawUser) > 0 {
		user = &models.User{}
		if err := json.Unmarshal(rawUser, user); err != nil {
			// A corrupt cached record is not worth failing startup over.
			s.log.Warn(ctx, "discarding unreadable cached user record", "error", err)
			user = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = string(tok)
	s.user = user
	if s.token != "" && s.user != nil {
		s.state = StateOptimistic
	} else {
		s.state = StateUnauthenticated
	}
	return nil
}

// Login performs a password login. On success the token and user are
// persisted and the session is Verified. Backend failures propagate with
// their message unmodified; nothing is retried.
func (s *Store) Login(ctx context.Context, email, password string) error {
	req := api.LoginRequest{Email: email, Password: password}
	s.attachDevice(ctx, &req)

	res, err := s.api.Login(ctx, req)
	if err != nil {
		return err
	}
	return s.adopt(ctx, res, "password")
}

// AdminLogin performs a password login against the admin portal.
func (s *Store) AdminLogin(ctx context.Context, email, password string) error {
	res, err := s.api.AdminLogin(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, res, "password")
}

// AdoptSession installs session material obtained by a pipeline (OTP
// confirmation) and records the analytics event for it.
func (s *Store) AdoptSession(ctx context.Context, res api.AuthResult, method string) error {
	return s.adopt(ctx, res, method)
}

// Logout clears the persisted credentials and resets the session. There is
// no confirmation step; the call is irreversible.
func (s *Store) Logout(ctx context.Context) error {
	s.tracker.TrackAuth(ctx, "logout", "", true)
	s.tracker.ClearUserID(ctx)

	err := s.repo.SetMany(ctx, map[string][]byte{
		storage.KeyAuthToken: nil,
		storage.KeyAuthUser:  nil,
	})

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	return nil
}

// CheckAuth reconciles the optimistic session against the server.
//
// No stored token: immediately Unauthenticated, no network call. A 200
// verifies the session; 401/403 is the only condition that force-clears the
// credentials. Any other failure keeps whatever optimistic state existed, so
// a flaky network never logs a user out.
func (s *Store) CheckAuth(ctx context.Context) error {
	tok, err := s.repo.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if len(tok) == 0 {
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return nil
	}

	// Adopt the stored token in case it changed out from under us.
	s.mu.Lock()
	s.token = string(tok)
	s.mu.Unlock()

	user, err := s.api.CurrentUser(ctx)
	switch {
	case err == nil:
		user.Normalize()
		if raw, merr := json.Marshal(user); merr == nil {
			if serr := s.repo.Set(ctx, storage.KeyAuthUser, raw); serr != nil {
				s.log.Warn(ctx, "failed to cache user record", "error", serr)
			}
		}
		s.mu.Lock()
		s.user = user
		s.state = StateVerified
		s.mu.Unlock()
		if user.ID != "" {
			s.tracker.SetUserID(ctx, user.ID)
		}
		return nil

	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrForbidden):
		if errors.Is(err, api.ErrForbidden) {
			s.log.Warn(ctx, "user account has been blocked")
		} else {
			s.log.Warn(ctx, "token invalid or expired, clearing auth state")
		}
		s.tracker.ClearUserID(ctx)
		if cerr := s.repo.SetMany(ctx, map[string][]byte{
			storage.KeyAuthToken: nil,
			storage.KeyAuthUser:  nil,
		}); cerr != nil {
			s.log.Error(ctx, "failed to clear stored credentials", "error", cerr)
		}
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return nil

	default:
		// Server unreachable or misbehaving: deliberately keep the token and
		// whatever auth state we had, so the user can retry later.
		s.log.Warn(ctx, "auth check failed, keeping credentials for retry", "error", err)
		s.mu.Lock()
		if s.user != nil && s.state != StateVerified {
			s.state = StateOptimistic
		}
		if s.user == nil {
			s.state = StateUnauthenticated
		}
		s.mu.Unlock()
		return nil
	}
}

// SetUser replaces the cached user record (nil clears it), persisting the
// change and recomputing the authentication state.
func (s *Store) SetUser(ctx context.Context, user *models.User) error {
	if user != nil {
		user.Normalize()
	}

	var err error
	if user == nil {
		err = s.repo.Delete(ctx, storage.KeyAuthUser)
	} else if raw, merr := json.Marshal(user); merr != nil {
		err = merr
	} else {
		err = s.repo.Set(ctx, storage.KeyAuthUser, raw)
	}
	if err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.recomputeStateLocked()
	s.mu.Unlock()

	if user != nil && user.ID != "" {
		s.tracker.SetUserID(ctx, user.ID)
	}
	return nil
}

// SetToken replaces the bearer token ("" clears it), persisting the change
// and recomputing the authentication state.
func (s *Store) SetToken(ctx context.Context, token string) error {
	var err error
	if token == "" {
		err = s.repo.Delete(ctx, storage.KeyAuthToken)
	} else {
		err = s.repo.Set(ctx, storage.KeyAuthToken, []byte(token))
	}
	if err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.recomputeStateLocked()
	s.mu.Unlock()
	return nil
}

// recomputeStateLocked derives the state after a direct mutation: both parts
// present means a server handed them to us, so the session is Verified;
// anything less is Unauthenticated. Optimistic arises only from Restore.
func (s *Store) recomputeStateLocked() {
	if s.token != "" && s.user != nil {
		s.state = StateVerified
	} else {
		s.state = StateUnauthenticated
	}
}

func (s *Store) adopt(ctx context.Context, res api.AuthResult, method string) error {
	if res.Token == "" {
		return errors.New("invalid response from server")
	}

	user := res.User
	if user != nil {
		user.Normalize()
	}

	values := map[string][]byte{storage.KeyAuthToken: []byte(res.Token)}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		values[storage.KeyAuthUser] = raw
	}
	if err := s.repo.SetMany(ctx, values); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.token = res.Token
	if user != nil {
		s.user = user
	}
	// Without a user record in the response the session stays incomplete
	// until the caller fetches one; the invariant on IsAuthenticated holds
	// either way.
	s.recomputeStateLocked()
	s.mu.Unlock()

	s.tracker.TrackAuth(ctx, "login", method, true)
	if user != nil && user.ID != "" {
		s.tracker.SetUserID(ctx, user.ID)
	}
	return nil
}

// attachDevice adds the device identity to a login request. Best-effort: a
// failure to produce an id never blocks the login itself.
func (s *Store) attachDevice(ctx context.Context, req *api.LoginRequest) {
	if s.device == nil {
		return
	}
	info, err := s.device.Info(ctx)
	if err != nil {
		s.log.Debug(ctx, "device identity unavailable", "error", err)
		return
	}
	req.DeviceID = info.DeviceID
	req.DeviceInfo = info
}
