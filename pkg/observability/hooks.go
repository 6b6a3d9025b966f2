// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about lineage fetches, cache operations, and backend calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so pkg/ never imports a
// metrics backend. The Prometheus recorder lives in internal/metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    rec := metrics.New()
//	    observability.SetLineageHooks(rec)
//	    observability.SetCacheHooks(rec)
//	    observability.SetHTTPHooks(rec)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Lineage().OnFetchStart(ctx, "backend", entityID)
//	// ... fetch and normalize ...
//	observability.Lineage().OnFetchComplete(ctx, "backend", entityID, nodeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Lineage Hooks
// =============================================================================

// LineageHooks receives events from the fetch/cache orchestration.
type LineageHooks interface {
	// Fetch events. source is "backend" or "mock".
	OnFetchStart(ctx context.Context, source, entityID string)
	OnFetchComplete(ctx context.Context, source, entityID string, nodeCount int, duration time.Duration, err error)

	// OnFetchRetry records a failed attempt that will be retried.
	OnFetchRetry(ctx context.Context, entityID string, attempt int, err error)

	// OnStaleServed records a stale cache entry returned after a failed refetch.
	OnStaleServed(ctx context.Context, entityID string, age time.Duration)

	// OnNormalize records a decoded payload and its missing-field warnings.
	OnNormalize(ctx context.Context, shape string, warnings int)

	// OnInvalidate records an explicit invalidation.
	OnInvalidate(ctx context.Context, entityID string, removed int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
// keyType is "lineage" or "batch".
type CacheHooks interface {
	// OnCacheHit records a fresh cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheStale records a hit past the freshness window.
	OnCacheStale(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLineageHooks is a no-op implementation of LineageHooks.
type NoopLineageHooks struct{}

func (NoopLineageHooks) OnFetchStart(context.Context, string, string) {}
func (NoopLineageHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopLineageHooks) OnFetchRetry(context.Context, string, int, error)     {}
func (NoopLineageHooks) OnStaleServed(context.Context, string, time.Duration) {}
func (NoopLineageHooks) OnNormalize(context.Context, string, int)             {}
func (NoopLineageHooks) OnInvalidate(context.Context, string, int)            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheStale(context.Context, string)    {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	lineageHooks LineageHooks = NoopLineageHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetLineageHooks registers custom lineage hooks.
// This should be called once at application startup before any fetches.
func SetLineageHooks(h LineageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lineageHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Lineage returns the registered lineage hooks.
func Lineage() LineageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lineageHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	lineageHooks = NoopLineageHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
