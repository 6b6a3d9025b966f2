// Package cache provides the storage layer for normalized lineage graphs.
//
// # Backends
//
//   - [MemoryCache]: process-local map, the default for `serve`
//   - [FileCache]: one JSON file per entry, the default for CLI usage
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [MongoCache]: shared cache with a server-side TTL index
//   - [NullCache]: caching disabled
//
// Every backend stores opaque bytes with a TTL and supports prefix deletion,
// which is how entity-wide invalidation is implemented.
//
// # Keys
//
// A [Keyer] builds keys. [DefaultKeyer] produces:
//
//	lineage:<escaped entity id>:<direction>:<depth>
//	lineage-batch:<sha256 of sorted ids>:<direction>:<depth>
//
// Entity IDs are query-escaped, so the entity prefix "lineage:<id>:" never
// matches another entity.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry TTL.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (ok == false), never an error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and reports how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Close releases backend resources.
	Close() error
}
