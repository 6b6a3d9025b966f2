package integrations

import (
	"context"
	"errors"
	"net/http"
	"time"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 15 * time.Second

var (
	// ErrNotFound is returned when the backend has no lineage for an entity.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrTimeout is returned when a request exceeds the client timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with the given timeout.
// A non-positive timeout selects [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Classify converts client errors into structured errors carrying an error
// code. Context cancellation is returned unchanged so callers can ignore it.
// Retryable markers in the chain are preserved.
func Classify(err error, entityID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case lkerr.GetCode(err) != "":
		return err
	case errors.Is(err, ErrNotFound):
		return lkerr.Wrap(lkerr.ErrCodeNotFound, err, "no lineage for entity %q", entityID)
	case errors.Is(err, ErrTimeout):
		return lkerr.Wrap(lkerr.ErrCodeTimeout, err, "fetching lineage for %q", entityID)
	case errors.Is(err, ErrRateLimited):
		return lkerr.Wrap(lkerr.ErrCodeRateLimited, err, "fetching lineage for %q", entityID)
	case errors.Is(err, ErrNetwork):
		return lkerr.Wrap(lkerr.ErrCodeNetwork, err, "fetching lineage for %q", entityID)
	default:
		return lkerr.Wrap(lkerr.ErrCodeInternal, err, "fetching lineage for %q", entityID)
	}
}
