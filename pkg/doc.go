// Package pkg provides the core libraries for lineagekit.
//
// # Overview
//
// lineagekit fetches data lineage graphs from a lineage backend, normalizes
// the backend's payload shapes into one canonical model, lays the graph out
// and serves it with freshness-aware caching. The pkg directory is organized
// by concern:
//
//  1. [lineage] - The canonical graph model, traversal options, edge styles,
//     auto-layout and integrity validation
//  2. [normalize] - Decoding of the legacy and server payload shapes
//  3. [integrations] - Lineage sources (REST backend and mock catalog)
//  4. [cache] - Cache backends (memory, file, Redis, MongoDB)
//  5. [pipeline] - Orchestration (cache lookup → fetch → normalize → store)
//  6. [graph] - Serialization of canonical and renderable graphs
//  7. [render/nodelink] - Graphviz DOT and SVG output
//
// # Architecture
//
// The data flow for a lineage request:
//
//	Entity ID + Options
//	         ↓
//	    [pipeline] Runner (cache key, freshness check)
//	         ↓
//	    [integrations] Source (raw JSON payload, retried)
//	         ↓
//	    [normalize] Decode (canonical lineage.Graph)
//	         ↓
//	    [cache] Store (fetched_at envelope)
//	         ↓
//	    [graph] / [render/nodelink] output
//
// # Supporting Packages
//
//   - [errors]: structured error codes mapped to HTTP statuses
//   - [httputil]: retry with exponential backoff
//   - [observability]: hooks for fetch and cache events
//   - [buildinfo]: version information set at build time
//
// [lineage]: github.com/lineagekit/lineagekit/pkg/lineage
// [normalize]: github.com/lineagekit/lineagekit/pkg/normalize
// [integrations]: github.com/lineagekit/lineagekit/pkg/integrations
// [cache]: github.com/lineagekit/lineagekit/pkg/cache
// [pipeline]: github.com/lineagekit/lineagekit/pkg/pipeline
// [graph]: github.com/lineagekit/lineagekit/pkg/graph
// [render/nodelink]: github.com/lineagekit/lineagekit/pkg/render/nodelink
// [errors]: github.com/lineagekit/lineagekit/pkg/errors
// [httputil]: github.com/lineagekit/lineagekit/pkg/httputil
// [observability]: github.com/lineagekit/lineagekit/pkg/observability
// [buildinfo]: github.com/lineagekit/lineagekit/pkg/buildinfo
package pkg
