package normalize

import (
	"fmt"

	"github.com/lineagekit/lineagekit/pkg/graph"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// Keys read from an edge's source_meta / target_meta objects.
const (
	metaColumnName = "column_name"
)

// Server converts a shape-B payload into a canonical graph. Shape B has no
// traversal block, so t is attached verbatim.
func Server(resp ServerResponse, t lineage.Traversal) *lineage.Graph {
	g := lineage.New(t)

	total := len(resp.Nodes)
	for i, n := range resp.Nodes {
		base := lineage.Metadata{
			"qualifiedName": n.QualifiedName.String(),
			"system":        n.System.String(),
		}
		if n.JobID != nil {
			base["jobId"] = n.JobID
		}
		node := lineage.Node{
			ID:       n.ID.String(),
			Kind:     n.NodeType.String(),
			Label:    n.NodeName.String(),
			Metadata: mergeMeta(base, n.Metadata),
		}
		place(&node, nil, i, total)
		g.Nodes = append(g.Nodes, node)
	}

	ids := edgeIDs{}
	for _, e := range resp.Edges {
		g.Edges = append(g.Edges, serverEdge(e, ids))
	}

	return g
}

// ServerRenderable converts a shape-B payload directly into the
// renderer-shaped graph.
func ServerRenderable(resp ServerResponse, t lineage.Traversal) graph.Renderable {
	return graph.FromLineage(Server(resp, t))
}

func serverEdge(e ServerEdge, ids edgeIDs) lineage.Edge {
	kind := e.RelationshipType.String()
	src, srcOK := columnName(e.SourceMeta)
	tgt, tgtOK := columnName(e.TargetMeta)

	edge := lineage.Edge{
		ID:               ids.next(e.RelationshipID.String(), e.SourceNodeID.String(), e.TargetNodeID.String(), kind),
		SourceID:         e.SourceNodeID.String(),
		TargetID:         e.TargetNodeID.String(),
		RelationshipKind: kind,
		Label:            kind,
		Style:            lineage.StyleFor(kind),
	}
	if srcOK && tgtOK {
		edge.Label = fmt.Sprintf("%s → %s", src, tgt)
		edge.ColumnMapping = &lineage.ColumnMapping{
			SourceColumns: []string{src},
			TargetColumns: []string{tgt},
		}
	}

	meta := lineage.Metadata{}
	setIf(meta, "confidence", e.Confidence)
	setIf(meta, "is_verified", e.IsVerified)
	setIf(meta, "jobId", e.JobID)
	if e.SourceMeta != nil {
		meta["source_meta"] = e.SourceMeta
	}
	if e.TargetMeta != nil {
		meta["target_meta"] = e.TargetMeta
	}
	if logic, ok := e.SourceMeta["transformation_logic"].(string); ok {
		edge.TransformationLogic = logic
	}
	if len(meta) > 0 {
		edge.Metadata = meta
	}
	return edge
}

func columnName(meta map[string]any) (string, bool) {
	s, ok := meta[metaColumnName].(string)
	return s, ok && s != ""
}

func setIf(m lineage.Metadata, key string, v any) {
	if v != nil {
		m[key] = v
	}
}
