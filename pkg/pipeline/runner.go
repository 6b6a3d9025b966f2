package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lineagekit/lineagekit/pkg/cache"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/graph"
	"github.com/lineagekit/lineagekit/pkg/httputil"
	"github.com/lineagekit/lineagekit/pkg/integrations"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/normalize"
	"github.com/lineagekit/lineagekit/pkg/observability"
)

// Runner encapsulates lineage fetching with caching.
// Both CLI and API use it so caching logic lives in one place.
//
// The Runner holds no per-query state. Multiple goroutines can safely use
// the same Runner. Concurrent misses for the same key are not deduplicated.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Source integrations.Source
	Logger *log.Logger

	Freshness   time.Duration
	Retention   time.Duration
	Attempts    int
	RetryDelay  time.Duration
	Concurrency int

	now func() time.Time
}

// NewRunner creates a runner fetching from src.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If logger is nil, log.Default() is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, src integrations.Source, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Source:      src,
		Logger:      logger,
		Freshness:   DefaultFreshness,
		Retention:   DefaultRetention,
		Attempts:    DefaultAttempts,
		RetryDelay:  DefaultRetryDelay,
		Concurrency: DefaultConcurrency,
		now:         time.Now,
	}
}

// GetLineage returns the graph for entityID, from cache when fresh.
func (r *Runner) GetLineage(ctx context.Context, entityID string, opts lineage.Options) (*lineage.Graph, error) {
	g, _, err := r.GetLineageWithInfo(ctx, entityID, opts)
	return g, err
}

// GetLineageWithInfo is GetLineage that also reports where the graph came from.
//
// Errors:
//   - INVALID_ENTITY / INVALID_INPUT for a bad id or options (nothing fetched)
//   - the source's error (NOT_FOUND, NETWORK_ERROR, TIMEOUT, ...) when the
//     fetch fails and no stale entry is available
//   - ctx.Err() unwrapped when the context is cancelled; nothing is cached
func (r *Runner) GetLineageWithInfo(ctx context.Context, entityID string, opts lineage.Options) (*lineage.Graph, CacheInfo, error) {
	if err := lkerr.ValidateEntityID(entityID); err != nil {
		return nil, CacheInfo{}, err
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, CacheInfo{}, err
	}

	key := r.Keyer.LineageKey(entityID, keyOpts(opts))
	return r.cached(ctx, key, "lineage", entityID, opts.Refresh, func(ctx context.Context) (*lineage.Graph, error) {
		return r.fetch(ctx, entityID, opts)
	})
}

// GetLineageRenderable returns the graph for entityID in the renderer's
// node/edge format.
func (r *Runner) GetLineageRenderable(ctx context.Context, entityID string, opts lineage.Options) (graph.Renderable, error) {
	g, err := r.GetLineage(ctx, entityID, opts)
	if err != nil {
		return graph.Renderable{}, err
	}
	return graph.FromLineage(g), nil
}

// Invalidate removes every cached graph for entityID regardless of
// direction and depth, plus every aggregated batch graph (any of which may
// contain the entity). It returns the number of entries removed.
func (r *Runner) Invalidate(ctx context.Context, entityID string) (int, error) {
	if err := lkerr.ValidateEntityID(entityID); err != nil {
		return 0, err
	}
	n, err := r.Cache.DeletePrefix(ctx, r.Keyer.EntityPrefix(entityID))
	if err != nil {
		return n, lkerr.Wrap(lkerr.ErrCodeInternal, err, "invalidate %q", entityID)
	}
	m, err := r.Cache.DeletePrefix(ctx, r.Keyer.BatchPrefix())
	if err != nil {
		return n + m, lkerr.Wrap(lkerr.ErrCodeInternal, err, "invalidate batch entries")
	}

	r.Logger.Info("invalidated lineage", "entity", entityID, "removed", n+m)
	observability.Lineage().OnInvalidate(ctx, entityID, n+m)
	return n + m, nil
}

// Validate checks referential integrity of g. It never mutates g.
func (r *Runner) Validate(g *lineage.Graph) lineage.ValidationResult {
	return lineage.Validate(g)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cached serves key from cache when fresh, else calls load and stores the
// result. A stale entry inside the retention window is the fallback when
// load fails.
func (r *Runner) cached(ctx context.Context, key, keyType, subject string, refresh bool, load func(context.Context) (*lineage.Graph, error)) (*lineage.Graph, CacheInfo, error) {
	hooks := observability.Cache()
	now := r.clock()

	var stale *lineage.Graph
	var staleAt time.Time
	var e entry
	switch err := cache.GetJSON(ctx, r.Cache, key, &e); {
	case err == nil:
		g, derr := graph.ReadGraph(bytes.NewReader(e.Graph))
		if derr != nil {
			r.Logger.Warn("discarding unreadable cache entry", "key", key, "err", derr)
			hooks.OnCacheMiss(ctx, keyType)
			break
		}
		age := now.Sub(e.FetchedAt)
		if !refresh && age < r.Freshness {
			hooks.OnCacheHit(ctx, keyType)
			r.Logger.Debug("lineage cache hit", "key", key, "age", age.Round(time.Second))
			return g, CacheInfo{Status: CacheFresh, Key: key, FetchedAt: e.FetchedAt}, nil
		}
		if age < r.Retention {
			stale, staleAt = g, e.FetchedAt
		}
		hooks.OnCacheStale(ctx, keyType)
	case errors.Is(err, cache.ErrCacheMiss):
		hooks.OnCacheMiss(ctx, keyType)
	default:
		if ctx.Err() != nil {
			return nil, CacheInfo{}, ctx.Err()
		}
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		hooks.OnCacheMiss(ctx, keyType)
	}

	g, err := load(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, CacheInfo{}, ctxErr
	}
	if err != nil {
		if stale == nil {
			return nil, CacheInfo{}, err
		}
		age := now.Sub(staleAt)
		r.Logger.Warn("serving stale lineage", "key", key, "age", age.Round(time.Second), "err", err)
		observability.Lineage().OnStaleServed(ctx, subject, age)
		return stale, CacheInfo{Status: CacheStale, Key: key, FetchedAt: staleAt}, nil
	}

	fetchedAt := r.clock()
	r.store(ctx, key, keyType, g, fetchedAt)
	return g, CacheInfo{Status: CacheMiss, Key: key, FetchedAt: fetchedAt}, nil
}

func (r *Runner) store(ctx context.Context, key, keyType string, g *lineage.Graph, fetchedAt time.Time) {
	raw, err := json.Marshal(g)
	if err != nil {
		r.Logger.Warn("encode cache entry failed", "key", key, "err", err)
		return
	}
	data, err := json.Marshal(entry{Graph: raw, FetchedAt: fetchedAt})
	if err != nil {
		r.Logger.Warn("encode cache entry failed", "key", key, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.Retention); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// fetch retrieves, decodes and validates one entity's graph.
func (r *Runner) fetch(ctx context.Context, entityID string, opts lineage.Options) (*lineage.Graph, error) {
	if r.Source == nil {
		return nil, lkerr.New(lkerr.ErrCodeInternal, "no lineage source configured")
	}
	src := r.Source.Name()
	hooks := observability.Lineage()
	hooks.OnFetchStart(ctx, src, entityID)
	start := time.Now()

	var data []byte
	attempt := 0
	err := httputil.RetryNotify(ctx, r.Attempts, r.RetryDelay, func() error {
		attempt++
		var ferr error
		data, ferr = r.Source.FetchLineage(ctx, entityID, opts)
		switch {
		case ferr == nil:
			r.Logger.Debug("fetch attempt succeeded", "entity", entityID, "source", src, "attempt", attempt)
		case ctx.Err() != nil:
			r.Logger.Debug("fetch attempt cancelled", "entity", entityID, "source", src, "attempt", attempt)
		default:
			r.Logger.Warn("fetch attempt failed", "entity", entityID, "source", src, "attempt", attempt, "err", lkerr.UserMessage(ferr))
		}
		return ferr
	}, func(n int, ferr error) {
		hooks.OnFetchRetry(ctx, entityID, n, ferr)
	})
	if err != nil {
		hooks.OnFetchComplete(ctx, src, entityID, 0, time.Since(start), err)
		return nil, err
	}

	g, report, err := normalize.Decode(data, opts.Traversal(entityID))
	if err != nil {
		hooks.OnFetchComplete(ctx, src, entityID, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnNormalize(ctx, string(report.Shape), len(report.Warnings))
	for _, w := range report.Warnings {
		r.Logger.Warn("lineage payload incomplete", "entity", entityID, "shape", report.Shape, "warning", w)
	}
	if res := lineage.Validate(g); !res.IsValid {
		r.Logger.Warn("lineage graph failed validation", "entity", entityID, "errors", res.Errors)
	}

	duration := time.Since(start)
	r.Logger.Info("fetched lineage",
		"entity", entityID,
		"source", src,
		"shape", report.Shape,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"attempts", attempt,
		"duration", duration)
	hooks.OnFetchComplete(ctx, src, entityID, g.NodeCount(), duration, nil)
	return g, nil
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
