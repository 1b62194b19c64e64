// Package storage provides the client's local persistence: a small key-value
// store backed by sqlite, holding the auth token, the cached user record, the
// device id and transient flow state. It is the only place the CLI writes
// those keys.
package storage

import "context"

// Well-known storage keys. No other package writes these directly; all
// mutations go through the session store, the identity provider or the
// pipelines.
const (
	KeyAuthToken         = "auth_token"
	KeyAuthUser          = "auth_user"
	KeyDeviceID          = "enyard_device_id"
	KeyPhone             = "phone"
	KeyWaitingListForm   = "penquinx_waiting_list_form"
	KeyAnalyticsClientID = "analytics_client_id"
)

// Repository is the key-value persistence contract.
//
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany persists several keys atomically; nil values delete the key.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
