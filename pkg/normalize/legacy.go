package normalize

import (
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// Legacy converts a shape-A payload into a canonical graph. Traversal
// metadata comes from the payload only.
func Legacy(resp LegacyResponse) *lineage.Graph {
	return legacy(resp, lineage.Traversal{})
}

// LegacyWith is Legacy with caller-supplied traversal values filling any
// gaps in the payload's metadata block.
func LegacyWith(resp LegacyResponse, fallback lineage.Traversal) *lineage.Graph {
	return legacy(resp, fallback)
}

func legacy(resp LegacyResponse, fallback lineage.Traversal) *lineage.Graph {
	g := lineage.New(legacyTraversal(resp.Metadata, fallback))

	total := len(resp.Nodes)
	for i, n := range resp.Nodes {
		node := lineage.Node{
			ID:       n.ID.String(),
			Kind:     n.Type.String(),
			Label:    n.Name.String(),
			Columns:  legacyColumns(n.Columns),
			Metadata: mergeMeta(lineage.Metadata{"schema": n.Schema.String(), "database": n.Database.String()}, n.Metadata),
		}
		place(&node, n.Position, i, total)
		g.Nodes = append(g.Nodes, node)
	}

	ids := edgeIDs{}
	for _, r := range resp.Relationships {
		kind := r.RelationshipType.String()
		edge := lineage.Edge{
			ID:                  ids.next(r.ID.String(), r.SourceNodeID.String(), r.TargetNodeID.String(), kind),
			SourceID:            r.SourceNodeID.String(),
			TargetID:            r.TargetNodeID.String(),
			RelationshipKind:    kind,
			Label:               kind,
			Style:               lineage.StyleFor(kind),
			TransformationLogic: r.TransformationLogic.String(),
			Metadata:            mergeMeta(nil, r.Metadata),
		}
		if len(r.SourceColumns) > 0 || len(r.TargetColumns) > 0 {
			edge.ColumnMapping = &lineage.ColumnMapping{
				SourceColumns: nonNil(r.SourceColumns),
				TargetColumns: nonNil(r.TargetColumns),
			}
		}
		g.Edges = append(g.Edges, edge)
	}

	return g
}

// legacyTraversal prefers payload values and fills gaps from fallback.
func legacyTraversal(m *LegacyMetadata, fallback lineage.Traversal) lineage.Traversal {
	t := fallback
	if m == nil {
		return t
	}
	if m.QueryDepth > 0 {
		t.Depth = m.QueryDepth
	}
	if m.Direction != "" {
		t.Direction = lineage.Direction(m.Direction)
	}
	if m.RootEntityID != "" {
		t.RootEntityID = m.RootEntityID.String()
	}
	return t
}

func legacyColumns(cols []LegacyColumn) []lineage.Column {
	if len(cols) == 0 {
		return nil
	}
	out := make([]lineage.Column, len(cols))
	for i, c := range cols {
		dt := c.DataType
		if dt == "" {
			dt = c.Type
		}
		out[i] = lineage.Column{
			Name:           c.Name.String(),
			DataType:       dt.String(),
			Classification: c.Classification.String(),
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
