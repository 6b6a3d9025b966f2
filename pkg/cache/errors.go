package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned when a remote backend (redis, mongo) cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by [GetJSON] when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnknownBackend is returned by [Open] for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrReservedNamespace is returned by [ValidateNamespace] for a
	// namespace that collides with unscoped keys.
	ErrReservedNamespace = errors.New("reserved cache namespace")
)
