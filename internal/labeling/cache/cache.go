// Package cache stores generated cluster labels so identical groups are not
// sent to the language model twice.
package cache

import "context"

// Cache defines the interface for label caches
type Cache interface {
	// Get retrieves labels from cache; a miss returns nil, nil
	Get(ctx context.Context, key string) ([]string, error)

	// Set stores labels in cache
	Set(ctx context.Context, key string, labels []string) error

	// Delete removes entries from cache
	Delete(ctx context.Context, keys []string) error

	// Close releases the cache's resources
	Close() error

	// Health checks if the cache is healthy
	Health(ctx context.Context) error
}
