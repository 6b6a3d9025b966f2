package integrations

import (
	"context"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// Source fetches raw lineage payloads for an entity. Implementations return
// either backend response shape; decoding is left to the caller.
//
// Errors carry a code from pkg/errors. Transient failures are wrapped with
// httputil.RetryableError.
type Source interface {
	// Name identifies the source in logs and metrics ("backend", "mock").
	Name() string

	// FetchLineage returns the payload for entityID traversed with opts.
	FetchLineage(ctx context.Context, entityID string, opts lineage.Options) ([]byte, error)
}
