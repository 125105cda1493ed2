package storage

import (
	"context"

	"github.com/rzbill/keysync/internal/namespace"
)

// Adapter is the durable key/value dependency of the engine. Opening a
// collection is idempotent and may create the namespace if absent.
type Adapter interface {
	// Open returns the collection for a namespace. It fails with
	// ErrUnavailable when the environment cannot provide persistent
	// storage.
	Open(ctx context.Context, ns namespace.Namespace) (Collection, error)
	// Close releases underlying resources.
	Close() error
}

// Collection performs get/put/delete by key within one namespace. All
// calls may block on I/O and honor context cancellation.
type Collection interface {
	// Get returns the stored bytes for key, or ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the value for key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
