// Package metrics exports lineagekit observability hooks as Prometheus
// metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lineagekit/lineagekit/pkg/observability"
)

const namespace = "lineagekit"

// Recorder implements the observability hook interfaces on top of a
// Prometheus registry.
type Recorder struct {
	registry *prom.Registry

	fetchTotal   *prom.CounterVec
	fetchSeconds *prom.HistogramVec
	fetchRetries *prom.CounterVec
	staleServed  prom.Counter
	normalized   *prom.CounterVec
	warnings     *prom.CounterVec
	invalidated  prom.Counter

	cacheEvents *prom.CounterVec
	cacheBytes  *prom.HistogramVec

	httpTotal   *prom.CounterVec
	httpSeconds *prom.HistogramVec
	httpErrors  *prom.CounterVec
}

// New creates a recorder with its own registry, including the Go runtime
// and process collectors.
func New() *Recorder {
	registry := prom.NewRegistry()
	r := &Recorder{
		registry: registry,
		fetchTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Total number of lineage fetches by source and outcome",
		}, []string{"source", "success"}),
		fetchSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_seconds",
			Help:      "Lineage fetch duration in seconds, retries included",
			Buckets:   prom.DefBuckets,
		}, []string{"source", "success"}),
		fetchRetries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Failed fetch attempts that were retried",
		}, []string{"attempt"}),
		staleServed: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stale_served_total",
			Help:      "Stale cache entries served after a failed refetch",
		}),
		normalized: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "normalized_total",
			Help:      "Payloads normalized by response shape",
		}, []string{"shape"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_warnings_total",
			Help:      "Missing-field warnings reported by the normalizer",
		}, []string{"shape"}),
		invalidated: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "invalidated_entries_total",
			Help:      "Cache entries removed by explicit invalidation",
		}),
		cacheEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_entry_bytes",
			Help:      "Size of cache writes in bytes",
			Buckets:   prom.ExponentialBuckets(256, 4, 8),
		}, []string{"key_type"}),
		httpTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend HTTP responses by host and status code",
		}, []string{"method", "host", "code"}),
		httpSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_seconds",
			Help:      "Backend HTTP request duration in seconds",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "host"}),
		httpErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Backend HTTP transport failures",
		}, []string{"method", "host"}),
	}

	registry.MustRegister(
		prom.NewGoCollector(),
		prom.NewProcessCollector(prom.ProcessCollectorOpts{}),
		r.fetchTotal, r.fetchSeconds, r.fetchRetries, r.staleServed,
		r.normalized, r.warnings, r.invalidated,
		r.cacheEvents, r.cacheBytes,
		r.httpTotal, r.httpSeconds, r.httpErrors,
	)
	return r
}

// Install registers r as the global lineage, cache and HTTP hooks.
func (r *Recorder) Install() {
	observability.SetLineageHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prom.Registry { return r.registry }

// --- observability.LineageHooks ---

func (r *Recorder) OnFetchStart(context.Context, string, string) {}

func (r *Recorder) OnFetchComplete(_ context.Context, source, _ string, _ int, d time.Duration, err error) {
	ok := strconv.FormatBool(err == nil)
	r.fetchTotal.WithLabelValues(source, ok).Inc()
	r.fetchSeconds.WithLabelValues(source, ok).Observe(d.Seconds())
}

func (r *Recorder) OnFetchRetry(_ context.Context, _ string, attempt int, _ error) {
	r.fetchRetries.WithLabelValues(strconv.Itoa(attempt)).Inc()
}

func (r *Recorder) OnStaleServed(context.Context, string, time.Duration) {
	r.staleServed.Inc()
}

func (r *Recorder) OnNormalize(_ context.Context, shape string, warnings int) {
	r.normalized.WithLabelValues(shape).Inc()
	if warnings > 0 {
		r.warnings.WithLabelValues(shape).Add(float64(warnings))
	}
}

func (r *Recorder) OnInvalidate(_ context.Context, _ string, removed int) {
	r.invalidated.Add(float64(removed))
}

// --- observability.CacheHooks ---

func (r *Recorder) OnCacheHit(_ context.Context, keyType string) {
	r.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (r *Recorder) OnCacheStale(_ context.Context, keyType string) {
	r.cacheEvents.WithLabelValues(keyType, "stale").Inc()
}

func (r *Recorder) OnCacheMiss(_ context.Context, keyType string) {
	r.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (r *Recorder) OnCacheSet(_ context.Context, keyType string, size int) {
	r.cacheEvents.WithLabelValues(keyType, "set").Inc()
	r.cacheBytes.WithLabelValues(keyType).Observe(float64(size))
}

// --- observability.HTTPHooks ---

func (r *Recorder) OnRequest(context.Context, string, string, string) {}

func (r *Recorder) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	r.httpTotal.WithLabelValues(method, host, strconv.Itoa(code)).Inc()
	r.httpSeconds.WithLabelValues(method, host).Observe(d.Seconds())
}

func (r *Recorder) OnError(_ context.Context, method, host, _ string, _ error) {
	r.httpErrors.WithLabelValues(method, host).Inc()
}

var (
	_ observability.LineageHooks = (*Recorder)(nil)
	_ observability.CacheHooks   = (*Recorder)(nil)
	_ observability.HTTPHooks    = (*Recorder)(nil)
)
