package identity

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/enyard/portal/internal/client/storage"
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

func TestFingerprint_StableAndPadded(t *testing.T) {
	components := []string{"linux", "amd64", "8", "host-1"}

	a := Fingerprint(components)
	b := Fingerprint(components)
	require.Equal(t, a, b)
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8,}$`), a)
	require.GreaterOrEqual(t, len(a), 8)
}

func TestFingerprint_DifferentInputsDiffer(t *testing.T) {
	a := Fingerprint([]string{"linux", "amd64", "8"})
	b := Fingerprint([]string{"linux", "arm64", "8"})
	require.NotEqual(t, a, b)
}

func TestFingerprint_EmptyInputDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() { Fingerprint(nil) })
	require.Len(t, Fingerprint(nil), 8)
}

func TestProvider_DeviceID_GeneratedOnceAndPersisted(t *testing.T) {
	repo := setupRepo(t)
	p := NewProviderWithCollector(repo, func() []string { return []string{"linux", "amd64"} })

	ctx := context.Background()
	first, err := p.DeviceID(ctx)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8,}-[0-9a-z]+$`), first)

	second, err := p.DeviceID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// a second provider over the same storage sees the same id
	other := NewProviderWithCollector(repo, func() []string { return []string{"other"} })
	third, err := other.DeviceID(ctx)
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestProvider_Reset_ProducesNewID(t *testing.T) {
	repo := setupRepo(t)
	p := NewProviderWithCollector(repo, func() []string { return []string{"linux", "amd64"} })

	// Freeze distinct timestamps so the regenerated id cannot collide.
	ts := time.Unix(1700000000, 0)
	p.now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}

	ctx := context.Background()
	first, err := p.DeviceID(ctx)
	require.NoError(t, err)

	reset, err := p.Reset(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first, reset)

	// the reset id is now the persisted one
	again, err := p.DeviceID(ctx)
	require.NoError(t, err)
	require.Equal(t, reset, again)
}

func TestProvider_Info_CarriesDeviceID(t *testing.T) {
	repo := setupRepo(t)
	p := NewProviderWithCollector(repo, func() []string { return []string{"linux"} })

	info, err := p.Info(context.Background())
	require.NoError(t, err)

	id, err := p.DeviceID(context.Background())
	require.NoError(t, err)

	require.Equal(t, id, info.DeviceID)
	require.NotEmpty(t, info.Platform)
	require.NotEmpty(t, info.Timestamp)
}

func TestHostComponents_NeverEmpty(t *testing.T) {
	components := hostComponents()
	require.NotEmpty(t, components)
}
