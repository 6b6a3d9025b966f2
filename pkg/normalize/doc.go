// Package normalize converts lineage backend responses into the canonical
// [lineage.Graph].
//
// Two payload shapes exist in the wild:
//
//   - Shape A ([LegacyResponse]): nodes, relationships and a metadata block
//     with queryDepth, direction and rootEntityId
//   - Shape B ([ServerResponse]): nodes and edges in snake_case, with
//     column-level source_meta/target_meta and no traversal block
//
// [Decode] dispatches on the presence of an "edges" key. [Legacy], [Server]
// and [ServerRenderable] are the pure transforms behind it.
//
// Normalization is lenient: missing fields become zero values. [CheckLegacy]
// and [CheckServer] list what was missing so callers can log it.
package normalize
