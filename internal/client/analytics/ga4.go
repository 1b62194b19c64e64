package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/enyard/portal/internal/client/storage"
	"github.com/enyard/portal/internal/logging"
	"github.com/google/uuid"
)

const defaultEndpoint = "https://www.google-analytics.com/mp/collect"

// GA4Tracker implements Tracker over the GA4 Measurement Protocol.
//
// The per-install client id is a random UUID persisted in local storage, the
// Measurement Protocol's stand-in for the browser client id.
type GA4Tracker struct {
	measurementID string
	apiSecret     string
	endpoint      string
	http          *http.Client
	repo          storage.Repository
	log           logging.Logger

	mu       sync.Mutex
	userID   string
	clientID string
}

// New returns a GA4 tracker, or Noop when measurementID is empty.
func New(measurementID, apiSecret string, repo storage.Repository, log logging.Logger) Tracker {
	if measurementID == "" {
		return Noop{}
	}
	return &GA4Tracker{
		measurementID: measurementID,
		apiSecret:     apiSecret,
		endpoint:      defaultEndpoint,
		http:          &http.Client{Timeout: 10 * time.Second},
		repo:          repo,
		log:           log,
	}
}

// WithEndpoint overrides the collection endpoint, for tests.
func (t *GA4Tracker) WithEndpoint(url string) *GA4Tracker {
	t.endpoint = url
	return t
}

func (t *GA4Tracker) TrackAuth(ctx context.Context, action, method string, success bool) {
	params := map[string]any{"success": success}
	if method != "" {
		params["method"] = method
	}
	t.TrackEvent(ctx, "auth_"+action, params)
}

func (t *GA4Tracker) TrackFormSubmit(ctx context.Context, form, page string, success bool, params map[string]any) {
	merged := map[string]any{
		"form_name": form,
		"page":      page,
		"success":   success,
	}
	for k, v := range params {
		merged[k] = v
	}
	t.TrackEvent(ctx, "form_submit", merged)
}

func (t *GA4Tracker) TrackEvent(ctx context.Context, name string, params map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	params["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	payload := map[string]any{
		"client_id": t.resolveClientID(ctx),
		"events": []map[string]any{
			{"name": name, "params": params},
		},
	}

	t.mu.Lock()
	if t.userID != "" {
		payload["user_id"] = t.userID
	}
	t.mu.Unlock()

	body, err := json.Marshal(payload)
	if err != nil {
		t.log.Warn(ctx, "failed to encode analytics event", "event", name, "error", err)
		return
	}

	url := t.endpoint + "?measurement_id=" + t.measurementID + "&api_secret=" + t.apiSecret
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.log.Warn(ctx, "failed to build analytics request", "event", name, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		t.log.Debug(ctx, "analytics delivery failed", "event", name, "error", err)
		return
	}
	_ = resp.Body.Close()
}

func (t *GA4Tracker) SetUserID(ctx context.Context, id string) {
	t.mu.Lock()
	t.userID = id
	t.mu.Unlock()
}

func (t *GA4Tracker) ClearUserID(ctx context.Context) {
	t.mu.Lock()
	t.userID = ""
	t.mu.Unlock()
}

// resolveClientID loads (or creates and persists) the install's client id.
func (t *GA4Tracker) resolveClientID(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clientID != "" {
		return t.clientID
	}

	if stored, err := t.repo.Get(ctx, storage.KeyAnalyticsClientID); err == nil && len(stored) > 0 {
		t.clientID = string(stored)
		return t.clientID
	}

	t.clientID = uuid.NewString()
	if err := t.repo.Set(ctx, storage.KeyAnalyticsClientID, []byte(t.clientID)); err != nil {
		t.log.Debug(ctx, "failed to persist analytics client id", "error", err)
	}
	return t.clientID
}
