package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/enyard/portal/internal/client/models"
	"github.com/enyard/portal/internal/logging"
)

// DefaultTimeout bounds every backend call. Generous for slow networks; on
// expiry the call fails like any other transport error.
const DefaultTimeout = 30 * time.Second

// TokenSource returns the current bearer token, or "" when none is stored.
// The token is read per request so a login during the process lifetime is
// picked up immediately.
type TokenSource func(ctx context.Context) string

// HTTPClient implements Client over the portal's REST/JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     logging.Logger
}

func NewHTTPClient(baseURL string, token TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		token:   token,
		log:     log,
	}
}

// WithTimeout overrides the default per-call timeout.
func (c *HTTPClient) WithTimeout(d time.Duration) *HTTPClient {
	c.http.Timeout = d
	return c
}

// envelope is the response convention used by every endpoint:
// {success, data?, message?}. Anything without success==true is a failure,
// even on HTTP 200.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	path := "/auth/verify-email?token=" + url.QueryEscape(token)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *HTTPClient) RequestOTP(ctx context.Context, req OTPRequest) error {
	return c.do(ctx, http.MethodPost, "/sms/request-otp", req, nil)
}

func (c *HTTPClient) RequestLoginOTP(ctx context.Context, req OTPRequest) error {
	return c.do(ctx, http.MethodPost, "/sms/login/request-otp", req, nil)
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/sms/verify-otp", req, &out)
	return out, err
}

func (c *HTTPClient) VerifyLoginOTP(ctx context.Context, req VerifyOTPRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/passwordless/verify-otp", req, &out)
	return out, err
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", req, &out)
	return out, err
}

func (c *HTTPClient) AdminLogin(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	err := c.do(ctx, http.MethodPost, "/admin/login", req, &out)
	return out, err
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) JoinWaitingList(ctx context.Context, req WaitingListRequest) error {
	return c.do(ctx, http.MethodPost, "/penquinx/waiting-list", req, nil)
}

// do performs one backend call: marshals body, attaches the bearer token,
// decodes the envelope, and unmarshals envelope.data into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: report a distinct,
		// explicit condition instead of a generic network error string.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var env envelope
	if len(raw) > 0 {
		// A malformed body on an error status still maps to a status error
		// below, so the decode failure is only fatal on 2xx.
		if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to decode response: %w", jsonErr)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The gateway reports; the session store decides whether to log out.
		c.log.Warn(ctx, "unauthorized response, token may have expired", "path", path)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return &Error{Status: resp.StatusCode, Message: messageFor(env.Message, resp.StatusCode)}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// messageFor prefers the backend-supplied message verbatim and falls back to
// generic status text only when none was given.
func messageFor(message string, status int) string {
	if message != "" {
		return message
	}
	switch status {
	case http.StatusBadRequest:
		return "Invalid request. Please check your input."
	case http.StatusUnauthorized:
		return "Unauthorized. Please sign in again."
	case http.StatusForbidden:
		return "Forbidden. You don't have permission to access this."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusConflict:
		return "Conflict. Resource already exists."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	case http.StatusServiceUnavailable:
		return "Service unavailable. Please try again later."
	default:
		return "Request failed"
	}
}
