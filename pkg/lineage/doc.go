// Package lineage defines the canonical lineage graph shared by every other
// lineagekit package.
//
// # Overview
//
// A lineage graph is a directed graph of data-system entities (tables,
// views, dashboards, notebooks, documents, business terms) connected by
// relationships (joins, transformations, references, dependencies):
//
//   - [Graph]: ordered nodes and edges plus the [Traversal] that produced them
//   - [Node]: an entity with a kind, display label, position and columns
//   - [Edge]: a relationship with a derived [VisualStyle]
//
// Graphs are value objects: the normalizer builds a fresh one per backend
// response and nothing mutates structural fields afterwards. Consumers may
// move a node (rewrite its Position), nothing else.
//
// # Layout
//
// [AutoLayout] packs nodes without an explicit position onto a fixed grid
// of 300×200 cells starting at (100, 100). The grid has ceil(sqrt(n))
// columns. The packing is deterministic: the same (index, total) pair always
// yields the same position.
//
// # Edge styles
//
// [StyleFor] maps a relationship kind to stroke color, width, dash and
// animation. The mapping is exact and closed; unknown kinds get the neutral
// default style.
//
// # Validation
//
// [Validate] reports duplicate node IDs and dangling edge endpoints as
// human-readable messages. Validation is advisory: callers decide whether
// an invalid graph is still rendered.
package lineage
