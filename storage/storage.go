package storage

import "context"

// Strategy is a key/value store for tokens. Implementations must be safe
// for concurrent use; there are no transactional guarantees across calls.
type Strategy interface {
	// GetItem returns the value under key. A missing key is found=false, never an error.
	GetItem(ctx context.Context, key string) (value string, found bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is a no-op.
	RemoveItem(ctx context.Context, key string) error

	// Clear removes every key owned by the strategy.
	Clear(ctx context.Context) error
}

// Closer is implemented by strategies holding connections.
type Closer interface {
	Close() error
}
