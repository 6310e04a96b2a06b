package storage

import "context"

// KV is the device key-value store: small string blobs addressed by key,
// durable across restarts (except for the memory driver).
type KV interface {
	// Get retrieves the value stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Logger is the subset of the application logger the storage layer needs.
// A nil Logger is accepted everywhere and disables logging.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
}
