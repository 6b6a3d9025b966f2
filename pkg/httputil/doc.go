// Package httputil provides retry helpers for lineage backend calls.
//
// # Retry
//
// [Retry] runs a function up to N times with exponential backoff. Only
// errors wrapped in [RetryableError] (see [Retryable]) are retried:
//
//   - Network errors and timeouts
//   - 5xx server errors
//   - 429 rate limit responses
//
// Everything else, including 404 and other client errors, fails fast:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    data, err = source.FetchLineage(ctx, id, opts)
//	    return err
//	})
//
// [RetryNotify] additionally reports each retried failure, which the
// pipeline uses to log attempts and emit observability events.
//
// # Defaults
//
// [RetryWithBackoff] uses 3 attempts and a 1 second base delay, doubling
// after each failure (1s, 2s). Context cancellation aborts the wait and
// returns ctx.Err() unwrapped.
package httputil
