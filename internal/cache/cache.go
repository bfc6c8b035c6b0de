package cache

import "context"

// Cache is the response cache interface. All fetch results pass through an
// implementation of this interface before reaching the ingestion pipeline.
//
// Implementations must be safe for use from concurrent fetch tasks but are
// not required to provide any locking beyond what their underlying store
// gives them; see the package documentation for the consistency model.
type Cache interface {
	// Get returns the cached value for key. The second return value
	// reports whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete drops key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether key is present.
	Has(ctx context.Context, key string) (bool, error)
}
