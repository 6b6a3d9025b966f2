// Package backend provides the REST lineage backend as an integrations.Source.
//
// # Overview
//
// The backend exposes one read endpoint:
//
//	GET <base>/lineage/{entityId}?direction=<upstream|downstream|both>&depth=<n>
//
// and answers with either the legacy payload (nodes, relationships,
// metadata) or the server contract payload (nodes, edges). This package
// returns the body untouched; pkg/normalize decodes it.
//
// # Usage
//
//	src, err := backend.New(backend.Config{
//	    BaseURL: "https://lineage.internal/api",
//	    Token:   os.Getenv("LINEAGE_TOKEN"),
//	})
//	data, err := src.FetchLineage(ctx, "tbl_orders", lineage.Options{Depth: 2})
//
// Errors carry pkg/errors codes (NOT_FOUND, NETWORK_ERROR, TIMEOUT,
// RATE_LIMITED). Transient ones are retryable; retrying is the caller's job.
package backend
