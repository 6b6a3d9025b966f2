// Package integrations provides the lineage sources a pipeline fetches from.
//
// # Overview
//
// A [Source] returns the raw JSON payload for one entity traversed in a
// direction to a depth. Two implementations live in subpackages:
//
//   - [backend]: the REST lineage backend (GET <base>/lineage/{id})
//   - [mock]: an in-process catalog with the same contract
//
// Payloads are decoded by pkg/normalize; sources never interpret them.
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality: default headers,
// an X-Request-ID per request, status mapping and observability hooks.
// Status codes map to sentinel errors:
//
//   - 404: [ErrNotFound]
//   - 429: [ErrRateLimited] (retryable)
//   - 504: [ErrTimeout] (retryable)
//   - other 5xx: [ErrNetwork] (retryable)
//   - other non-200: [ErrNetwork]
//
// [Classify] turns these into structured errors from pkg/errors.
//
// [backend]: github.com/lineagekit/lineagekit/pkg/integrations/backend
// [mock]: github.com/lineagekit/lineagekit/pkg/integrations/mock
package integrations
