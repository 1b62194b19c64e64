// Package identity derives a stable, pseudo-unique device identifier from
// host characteristics and persists it locally. The id is best-effort
// bookkeeping for the backend's device/session tracking, not a security
// boundary.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/enyard/portal/internal/client/storage"
)

// CollectorFunc returns the raw fingerprint components for this host.
// Components that cannot be determined are simply omitted; collection
// never fails.
type CollectorFunc func() []string

// Provider generates and persists the device identifier.
type Provider struct {
	repo    storage.Repository
	collect CollectorFunc
	now     func() time.Time
}

// DeviceInfo is the descriptive payload attached to login and OTP
// confirmation calls alongside the device id.
type DeviceInfo struct {
	DeviceID  string `json:"deviceId"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	Hostname  string `json:"hostname,omitempty"`
	CPUCount  int    `json:"cpuCount"`
	Language  string `json:"language,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewProvider(repo storage.Repository) *Provider {
	return &Provider{repo: repo, collect: hostComponents, now: time.Now}
}

// NewProviderWithCollector is like NewProvider but with an injected
// component source, for tests and embedders with richer host knowledge.
func NewProviderWithCollector(repo storage.Repository, collect CollectorFunc) *Provider {
	return &Provider{repo: repo, collect: collect, now: time.Now}
}

// Fingerprint reduces the component strings to an 8-character lower-hex hash.
// The rolling hash (h = h*31 + ch over 32-bit signed arithmetic, absolute
// value) matches what the portal has always sent, so ids stay comparable
// across client versions.
func Fingerprint(components []string) string {
	combined := strings.Join(components, "|")

	var h int32
	for _, ch := range []byte(combined) {
		h = h*31 + int32(ch)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return fmt.Sprintf("%08x", v)
}

// DeviceID returns the persisted device id, generating and storing a new one
// on first use. The generated id is the fingerprint hash joined with a
// base-36 creation timestamp for extra entropy.
func (p *Provider) DeviceID(ctx context.Context) (string, error) {
	stored, err := p.repo.Get(ctx, storage.KeyDeviceID)
	if err != nil {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}
	if len(stored) > 0 {
		return string(stored), nil
	}

	id := Fingerprint(p.collect()) + "-" + strconv.FormatInt(p.now().UnixMilli(), 36)
	if err := p.repo.Set(ctx, storage.KeyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("failed to persist device id: %w", err)
	}
	return id, nil
}

// Reset deletes the persisted id and generates a fresh one.
func (p *Provider) Reset(ctx context.Context) (string, error) {
	if err := p.repo.Delete(ctx, storage.KeyDeviceID); err != nil {
		return "", fmt.Errorf("failed to reset device id: %w", err)
	}
	return p.DeviceID(ctx)
}

// Info assembles the device description sent to the backend. The id is
// resolved (and generated if needed) through DeviceID.
func (p *Provider) Info(ctx context.Context) (DeviceInfo, error) {
	id, err := p.DeviceID(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	info := hostInfo()
	info.DeviceID = id
	info.Timestamp = p.now().UTC().Format(time.RFC3339)
	return info, nil
}
