package graph

import (
	"encoding/json"
	"maps"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Renderer element types.
const (
	NodeTypeEntity   = "entity"
	EdgeTypeSmoothed = "smoothstep"
)

// DashArray is the SVG stroke-dasharray applied to dashed edges.
const DashArray = "5,5"

// =============================================================================
// Renderable - Renderer-Shaped Lineage Graph
// =============================================================================

// Renderable is the renderer-shaped form of a lineage graph: nodes carry a
// type tag and a data payload, edges carry resolved stroke attributes.
// Used for API responses and the `--format renderable` CLI output.
type Renderable struct {
	Nodes     []Node            `json:"nodes" bson:"nodes"`
	Edges     []Edge            `json:"edges" bson:"edges"`
	Traversal lineage.Traversal `json:"traversal" bson:"traversal"`
}

// Node is a positioned renderer node.
type Node struct {
	ID       string           `json:"id" bson:"id"`
	Type     string           `json:"type" bson:"type"`
	Position lineage.Position `json:"position" bson:"position"`
	Data     NodeData         `json:"data" bson:"data"`
}

// NodeData is the payload a renderer shows inside a node.
type NodeData struct {
	Label      string           `json:"label" bson:"label"`
	Kind       string           `json:"kind" bson:"kind"`
	Columns    []lineage.Column `json:"columns,omitempty" bson:"columns,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty" bson:"metadata,omitempty"`
	AutoPlaced bool             `json:"autoPlaced,omitempty" bson:"auto_placed,omitempty"`
}

// Edge is a styled renderer edge.
type Edge struct {
	ID       string    `json:"id" bson:"id"`
	Source   string    `json:"source" bson:"source"`
	Target   string    `json:"target" bson:"target"`
	Type     string    `json:"type" bson:"type"`
	Label    string    `json:"label,omitempty" bson:"label,omitempty"`
	Animated bool      `json:"animated" bson:"animated"`
	Style    EdgeStyle `json:"style" bson:"style"`
	Data     EdgeData  `json:"data" bson:"data"`
}

// EdgeStyle holds SVG stroke attributes.
type EdgeStyle struct {
	Stroke          string `json:"stroke" bson:"stroke"`
	StrokeWidth     int    `json:"strokeWidth" bson:"stroke_width"`
	StrokeDasharray string `json:"strokeDasharray,omitempty" bson:"stroke_dasharray,omitempty"`
}

// EdgeData carries the lineage-specific part of an edge.
type EdgeData struct {
	RelationshipType    string                 `json:"relationshipType" bson:"relationship_type"`
	ColumnMapping       *lineage.ColumnMapping `json:"columnMapping,omitempty" bson:"column_mapping,omitempty"`
	TransformationLogic string                 `json:"transformationLogic,omitempty" bson:"transformation_logic,omitempty"`
	Metadata            map[string]any         `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// =============================================================================
// lineage.Graph ↔ Renderable Conversion
// =============================================================================

// FromLineage converts a canonical graph to its renderer form.
// Node and edge order is preserved.
func FromLineage(g *lineage.Graph) Renderable {
	out := Renderable{
		Nodes:     make([]Node, len(g.Nodes)),
		Edges:     make([]Edge, len(g.Edges)),
		Traversal: g.Traversal,
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{
			ID:       n.ID,
			Type:     NodeTypeEntity,
			Position: n.Position,
			Data: NodeData{
				Label:      n.Label,
				Kind:       n.Kind,
				Columns:    n.Columns,
				Metadata:   copyMeta(n.Metadata),
				AutoPlaced: n.AutoPlaced,
			},
		}
	}
	for i, e := range g.Edges {
		out.Edges[i] = edgeFromLineage(e)
	}
	return out
}

// ToLineage converts a renderer graph back to the canonical form.
// Edge styles are re-derived from the relationship type, so stroke
// attributes edited in the renderer form do not survive the round trip.
func ToLineage(r Renderable) *lineage.Graph {
	g := lineage.New(r.Traversal)
	for _, n := range r.Nodes {
		g.Nodes = append(g.Nodes, lineage.Node{
			ID:         n.ID,
			Kind:       n.Data.Kind,
			Label:      n.Data.Label,
			Position:   n.Position,
			Columns:    n.Data.Columns,
			Metadata:   copyMeta(n.Data.Metadata),
			AutoPlaced: n.Data.AutoPlaced,
		})
	}
	for _, e := range r.Edges {
		g.Edges = append(g.Edges, lineage.Edge{
			ID:                  e.ID,
			SourceID:            e.Source,
			TargetID:            e.Target,
			RelationshipKind:    e.Data.RelationshipType,
			Label:               e.Label,
			Style:               lineage.StyleFor(e.Data.RelationshipType),
			ColumnMapping:       e.Data.ColumnMapping,
			TransformationLogic: e.Data.TransformationLogic,
			Metadata:            copyMeta(e.Data.Metadata),
		})
	}
	return g
}

// UnmarshalRenderable deserializes JSON bytes to a Renderable.
func UnmarshalRenderable(data []byte) (Renderable, error) {
	var r Renderable
	if err := json.Unmarshal(data, &r); err != nil {
		return Renderable{}, err
	}
	return r, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func edgeFromLineage(e lineage.Edge) Edge {
	out := Edge{
		ID:       e.ID,
		Source:   e.SourceID,
		Target:   e.TargetID,
		Type:     EdgeTypeSmoothed,
		Label:    e.Label,
		Animated: e.Style.Animated,
		Style: EdgeStyle{
			Stroke:      e.Style.StrokeColor,
			StrokeWidth: e.Style.StrokeWidth,
		},
		Data: EdgeData{
			RelationshipType:    e.RelationshipKind,
			ColumnMapping:       e.ColumnMapping,
			TransformationLogic: e.TransformationLogic,
			Metadata:            copyMeta(e.Metadata),
		},
	}
	if e.Style.Dashed {
		out.Style.StrokeDasharray = DashArray
	}
	return out
}

// copyMeta creates a shallow copy of metadata to avoid aliasing the source graph.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
