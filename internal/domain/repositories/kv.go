package repositories

import "context"

// UpdateFn receives the current value of a key (nil when absent) and returns
// the value to write back.
type UpdateFn func(current []byte) ([]byte, error)

// KVStore is a durable key-value store. Each key holds one serialized
// collection and every write replaces the whole value.
type KVStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value. A store that is full returns an error matching
	// domain.ErrQuotaExceeded.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFn) error

	Close() error
}
