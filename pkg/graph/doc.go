// Package graph provides the wire formats for lineage graphs.
//
// Two JSON shapes are supported:
//
//   - the canonical [lineage.Graph] (nodes, edges, traversalMetadata), used for
//     caching, the `get --format json` CLI output and the HTTP API default
//   - [Renderable], the renderer-shaped form in which nodes carry a type tag,
//     a position and a data payload, and edges carry resolved stroke attributes
//
// # Renderable Format
//
//	{
//	  "nodes": [
//	    {"id": "tbl_account", "type": "entity", "position": {"x": 100, "y": 100},
//	     "data": {"label": "Account", "kind": "table"}}
//	  ],
//	  "edges": [
//	    {"id": "r1", "source": "tbl_account", "target": "tbl_payment",
//	     "type": "smoothstep", "label": "user_id → id", "animated": false,
//	     "style": {"stroke": "#3b82f6", "strokeWidth": 2},
//	     "data": {"relationshipType": "join"}}
//	  ],
//	  "traversal": {"depth": 3, "direction": "both", "rootEntityId": "tbl_account"}
//	}
//
// Dashed edges (transformations) carry "strokeDasharray": "5,5".
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("lineage.json")       // File → lineage.Graph
//	graph.WriteRenderableFile(g, "renderable.json")    // lineage.Graph → File
//	data, _ := graph.MarshalRenderable(g)              // lineage.Graph → []byte
//	r := graph.FromLineage(g)                          // lineage.Graph → Renderable
//	back := graph.ToLineage(r)                         // Renderable → lineage.Graph
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
