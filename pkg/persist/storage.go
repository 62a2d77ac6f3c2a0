package persist

import (
	"context"
	"errors"
)

// Storage is a generic key-value backend for serialized snapshots.
// Implementations must be safe for concurrent use.
type Storage interface {
	// GetItem returns the stored value for key.
	// Returns ("", false, nil) if the key does not exist.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, overwriting any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Watcher is implemented by backends that can report changes made by other
// writers, such as another process sharing the same directory.
type Watcher interface {
	// Watch calls fn with the new value every time key changes, until stop
	// is called or ctx is done. fn may run on a backend goroutine.
	Watch(ctx context.Context, key string, fn func(value string)) (stop func(), err error)
}

// ErrWatchUnsupported is returned by wrappers whose underlying backend does
// not implement Watcher.
var ErrWatchUnsupported = errors.New("persist: storage does not support watching")
