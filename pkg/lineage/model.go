package lineage

import "maps"

// Entity kinds produced by the lineage backend. The set is not closed:
// normalizers keep unrecognized kind strings verbatim.
const (
	KindTable     = "table"
	KindView      = "view"
	KindDashboard = "dashboard"
	KindNotebook  = "notebook"
	KindDocument  = "document"
	KindTerm      = "term"
)

// Relationship kinds understood by [StyleFor].
const (
	RelationshipJoin           = "join"
	RelationshipTransformation = "transformation"
	RelationshipReference      = "reference"
	RelationshipDependency     = "dependency"
)

// Metadata is an open key-value bag attached to nodes and edges.
// Values are JSON-compatible; lineagekit never interprets them.
type Metadata map[string]any

// Position is a 2-D layout coordinate.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Column describes one column of a table or view node.
type Column struct {
	Name           string `json:"name" bson:"name"`
	DataType       string `json:"dataType,omitempty" bson:"data_type,omitempty"`
	Classification string `json:"classification,omitempty" bson:"classification,omitempty"`
}

// Node is an entity in a lineage graph.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Kind     string   `json:"kind" bson:"kind"`
	Label    string   `json:"displayLabel" bson:"label"`
	Position Position `json:"position" bson:"position"`
	Columns  []Column `json:"columns,omitempty" bson:"columns,omitempty"`
	Metadata Metadata `json:"metadata,omitempty" bson:"metadata,omitempty"`

	// AutoPlaced is true when Position came from [AutoLayout] rather than
	// from the payload.
	AutoPlaced bool `json:"autoPlaced,omitempty" bson:"auto_placed,omitempty"`
}

// ColumnMapping lists the columns a join or transformation edge connects.
type ColumnMapping struct {
	SourceColumns []string `json:"sourceColumns" bson:"source_columns"`
	TargetColumns []string `json:"targetColumns" bson:"target_columns"`
}

// VisualStyle is the rendering treatment of an edge. It is always derived
// from the relationship kind via [StyleFor].
type VisualStyle struct {
	StrokeColor string `json:"strokeColor" bson:"stroke_color"`
	StrokeWidth int    `json:"strokeWidth" bson:"stroke_width"`
	Dashed      bool   `json:"dashed" bson:"dashed"`
	Animated    bool   `json:"animated" bson:"animated"`
}

// Edge is a directed relationship between two nodes. Self-loops are legal.
type Edge struct {
	ID                  string         `json:"id" bson:"id"`
	SourceID            string         `json:"sourceId" bson:"source_id"`
	TargetID            string         `json:"targetId" bson:"target_id"`
	RelationshipKind    string         `json:"relationshipKind" bson:"relationship_kind"`
	Label               string         `json:"label" bson:"label"`
	Style               VisualStyle    `json:"visualStyle" bson:"visual_style"`
	ColumnMapping       *ColumnMapping `json:"columnMapping,omitempty" bson:"column_mapping,omitempty"`
	TransformationLogic string         `json:"transformationLogic,omitempty" bson:"transformation_logic,omitempty"`
	Metadata            Metadata       `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Traversal records the query that produced a graph.
type Traversal struct {
	Depth        int       `json:"depth" bson:"depth"`
	Direction    Direction `json:"direction" bson:"direction"`
	RootEntityID string    `json:"rootEntityId" bson:"root_entity_id"`

	// RootEntityIDs is set for aggregated multi-entity graphs.
	RootEntityIDs []string `json:"rootEntityIds,omitempty" bson:"root_entity_ids,omitempty"`
}

// Graph is a lineage graph. Node and edge order is the backend response
// order and drives auto-layout.
type Graph struct {
	Nodes     []Node    `json:"nodes" bson:"nodes"`
	Edges     []Edge    `json:"edges" bson:"edges"`
	Traversal Traversal `json:"traversalMetadata" bson:"traversal"`
}

// New returns an empty graph for the given traversal.
func New(t Traversal) *Graph {
	return &Graph{
		Nodes:     []Node{},
		Edges:     []Edge{},
		Traversal: t,
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// FindNode returns the first node with the given ID.
// The returned pointer aliases the graph's slice, so callers may update the
// node's Position in place.
func (g *Graph) FindNode(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// FindEdge returns the first edge with the given ID.
func (g *Graph) FindEdge(id string) (*Edge, bool) {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i], true
		}
	}
	return nil, false
}

// EdgesTouching returns every edge whose source or target is nodeID, in
// edge order. A self-loop is returned once.
func (g *Graph) EdgesTouching(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.SourceID == nodeID || e.TargetID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// NodeIDs returns node IDs in graph order, duplicates included.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// MoveNode rewrites the position of node id. It reports false when the node
// does not exist. Structural fields are never touched.
func (g *Graph) MoveNode(id string, p Position) bool {
	n, ok := g.FindNode(id)
	if !ok {
		return false
	}
	n.Position = p
	n.AutoPlaced = false
	return true
}

// Relayout re-packs every auto-placed node using its index among all nodes.
// Nodes with explicit positions keep them.
func (g *Graph) Relayout() {
	total := len(g.Nodes)
	for i := range g.Nodes {
		if g.Nodes[i].AutoPlaced {
			g.Nodes[i].Position = AutoLayout(i, total)
		}
	}
}

// Clone returns a deep copy of g. Metadata maps are copied shallowly.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes:     make([]Node, len(g.Nodes)),
		Edges:     make([]Edge, len(g.Edges)),
		Traversal: g.Traversal,
	}
	out.Traversal.RootEntityIDs = cloneStrings(g.Traversal.RootEntityIDs)
	for i, n := range g.Nodes {
		n.Columns = append([]Column(nil), n.Columns...)
		n.Metadata = cloneMeta(n.Metadata)
		out.Nodes[i] = n
	}
	for i, e := range g.Edges {
		if e.ColumnMapping != nil {
			cm := ColumnMapping{
				SourceColumns: cloneStrings(e.ColumnMapping.SourceColumns),
				TargetColumns: cloneStrings(e.ColumnMapping.TargetColumns),
			}
			e.ColumnMapping = &cm
		}
		e.Metadata = cloneMeta(e.Metadata)
		out.Edges[i] = e
	}
	return out
}

func cloneMeta(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
