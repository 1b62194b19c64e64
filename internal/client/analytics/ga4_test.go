package analytics

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/enyard/portal/internal/client/storage"
	"github.com/enyard/portal/internal/logging"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) storage.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE storage (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return storage.NewSQLiteRepository(db)
}

func testLogger() logging.Logger {
	var buf bytes.Buffer
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
}

func TestNew_WithoutMeasurementIDIsNoop(t *testing.T) {
	tr := New("", "secret", setupRepo(t), testLogger())
	require.IsType(t, Noop{}, tr)

	// a noop tracker accepts everything without side effects
	tr.TrackAuth(context.Background(), "login", "password", true)
	tr.SetUserID(context.Background(), "u1")
	tr.ClearUserID(context.Background())
}

func TestGA4Tracker_SendsEventWithClientID(t *testing.T) {
	var gotURL string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	repo := setupRepo(t)
	tr := New("G-TEST", "sec", repo, testLogger()).(*GA4Tracker).WithEndpoint(srv.URL)

	tr.TrackAuth(context.Background(), "login", "otp", true)

	require.Contains(t, gotURL, "measurement_id=G-TEST")
	require.Contains(t, gotURL, "api_secret=sec")
	require.NotEmpty(t, gotBody["client_id"])

	events := gotBody["events"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	require.Equal(t, "auth_login", ev["name"])
	params := ev["params"].(map[string]any)
	require.Equal(t, "otp", params["method"])
	require.Equal(t, true, params["success"])
}

func TestGA4Tracker_ClientIDPersistsAcrossTrackers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	repo := setupRepo(t)

	a := New("G-TEST", "sec", repo, testLogger()).(*GA4Tracker).WithEndpoint(srv.URL)
	first := a.resolveClientID(context.Background())
	require.NotEmpty(t, first)

	b := New("G-TEST", "sec", repo, testLogger()).(*GA4Tracker).WithEndpoint(srv.URL)
	require.Equal(t, first, b.resolveClientID(context.Background()))
}

func TestGA4Tracker_UserIDSetAndCleared(t *testing.T) {
	bodies := make([]map[string]any, 0, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	tr := New("G-TEST", "sec", setupRepo(t), testLogger()).(*GA4Tracker).WithEndpoint(srv.URL)

	tr.SetUserID(context.Background(), "u1")
	tr.TrackEvent(context.Background(), "first", nil)

	tr.ClearUserID(context.Background())
	tr.TrackEvent(context.Background(), "second", nil)

	require.Len(t, bodies, 2)
	require.Equal(t, "u1", bodies[0]["user_id"])
	_, hasUser := bodies[1]["user_id"]
	require.False(t, hasUser)
}

func TestGA4Tracker_DeliveryFailureIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	tr := New("G-TEST", "sec", setupRepo(t), testLogger()).(*GA4Tracker).WithEndpoint(addr)

	require.NotPanics(t, func() {
		tr.TrackFormSubmit(context.Background(), "waiting_list", "/penquin", false, nil)
	})
}
