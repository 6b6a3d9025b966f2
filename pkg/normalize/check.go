package normalize

import "fmt"

// CheckLegacy lists required fields missing from a shape-A payload.
func CheckLegacy(resp LegacyResponse) []string {
	var w []string
	for i, n := range resp.Nodes {
		if n.ID == "" {
			w = append(w, fmt.Sprintf("node %d: missing id", i))
			continue
		}
		if n.Name == "" {
			w = append(w, fmt.Sprintf("node %s: missing name", n.ID))
		}
		if n.Type == "" {
			w = append(w, fmt.Sprintf("node %s: missing type", n.ID))
		}
	}
	for i, r := range resp.Relationships {
		ref := r.ID.String()
		if ref == "" {
			ref = fmt.Sprintf("#%d", i)
			w = append(w, fmt.Sprintf("relationship %s: missing id", ref))
		}
		if r.SourceNodeID == "" {
			w = append(w, fmt.Sprintf("relationship %s: missing sourceNodeId", ref))
		}
		if r.TargetNodeID == "" {
			w = append(w, fmt.Sprintf("relationship %s: missing targetNodeId", ref))
		}
		if r.RelationshipType == "" {
			w = append(w, fmt.Sprintf("relationship %s: missing relationshipType", ref))
		}
	}
	if resp.Metadata == nil {
		w = append(w, "missing metadata block")
	}
	return w
}

// CheckServer lists required fields missing from a shape-B payload.
func CheckServer(resp ServerResponse) []string {
	var w []string
	for i, n := range resp.Nodes {
		if n.ID == "" {
			w = append(w, fmt.Sprintf("node %d: missing id", i))
			continue
		}
		if n.NodeName == "" {
			w = append(w, fmt.Sprintf("node %s: missing node_name", n.ID))
		}
		if n.NodeType == "" {
			w = append(w, fmt.Sprintf("node %s: missing node_type", n.ID))
		}
	}
	for i, e := range resp.Edges {
		ref := e.RelationshipID.String()
		if ref == "" {
			ref = fmt.Sprintf("#%d", i)
			w = append(w, fmt.Sprintf("edge %s: missing relationship_id", ref))
		}
		if e.SourceNodeID == "" {
			w = append(w, fmt.Sprintf("edge %s: missing source_node_id", ref))
		}
		if e.TargetNodeID == "" {
			w = append(w, fmt.Sprintf("edge %s: missing target_node_id", ref))
		}
		if e.RelationshipType == "" {
			w = append(w, fmt.Sprintf("edge %s: missing relationship_type", ref))
		}
	}
	return w
}
