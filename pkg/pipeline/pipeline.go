// Package pipeline orchestrates lineage fetching: cache lookup, fetch with
// retry, normalization, validation and cache write.
//
// This package is shared by the CLI and the HTTP API so both serve the
// same freshness and fallback behavior.
//
// # Flow
//
//  1. Look up lineage:<id>:<direction>:<depth> in the cache
//  2. Fresh entry (younger than Freshness): return it, no network call
//  3. Otherwise fetch from the Source, retrying transient failures
//  4. Decode either payload shape, lay out and style the graph
//  5. Validate (advisory, logged) and write the entry with TTL Retention
//  6. If the fetch fails and a stale entry younger than Retention exists,
//     return the stale graph instead of the error
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, src, logger)
//	g, err := runner.GetLineage(ctx, "tbl_orders", lineage.Options{Depth: 2})
//
//	// Several roots merged into one graph
//	g, err = runner.GetMultipleLineage(ctx, []string{"tbl_orders", "tbl_customers"}, lineage.Options{})
//
//	// Drop every cached variant of an entity
//	n, err := runner.Invalidate(ctx, "tbl_orders")
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/lineagekit/lineagekit/pkg/cache"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFreshness is how long a cached graph is served without a fetch.
	DefaultFreshness = 5 * time.Minute

	// DefaultRetention is how long a cached graph may be served as a stale
	// fallback when a refetch fails. Entries are written with this TTL.
	DefaultRetention = 10 * time.Minute

	// DefaultAttempts is the number of fetch attempts for transient failures.
	DefaultAttempts = 3

	// DefaultRetryDelay is the initial backoff; it doubles per retry.
	DefaultRetryDelay = time.Second

	// DefaultConcurrency bounds parallel fetches in GetMultipleLineage.
	DefaultConcurrency = 4
)

// =============================================================================
// Cache Info
// =============================================================================

// CacheStatus says where a returned graph came from.
type CacheStatus string

// Cache statuses.
const (
	CacheFresh CacheStatus = "fresh" // served from cache within the freshness window
	CacheStale CacheStatus = "stale" // served from cache after a failed refetch
	CacheMiss  CacheStatus = "miss"  // fetched from the source
)

// CacheInfo describes how a graph was obtained.
type CacheInfo struct {
	Status    CacheStatus `json:"status"`
	Key       string      `json:"key"`
	FetchedAt time.Time   `json:"fetchedAt"`
}

// Age returns how old the graph was at now.
func (i CacheInfo) Age(now time.Time) time.Duration {
	if i.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(i.FetchedAt)
}

// entry is the cached value: the normalized graph and when it was fetched.
type entry struct {
	Graph     json.RawMessage `json:"graph"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// keyOpts converts query options to cache key options.
func keyOpts(opts lineage.Options) cache.LineageKeyOpts {
	return cache.LineageKeyOpts{
		Direction: string(opts.Direction),
		Depth:     opts.Depth,
	}
}
