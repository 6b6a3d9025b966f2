package lineage

import "fmt"

// ErrDuplicateNodeIDs is the message reported when node IDs collide.
const ErrDuplicateNodeIDs = "Duplicate node IDs detected"

// ValidationResult is the outcome of [Validate].
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks referential integrity of g without modifying it:
// duplicate node IDs, and edges whose source or target is not a node.
// The result is advisory.
func Validate(g *Graph) ValidationResult {
	errs := []string{}

	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	if len(ids) != len(g.Nodes) {
		errs = append(errs, ErrDuplicateNodeIDs)
	}

	for _, e := range g.Edges {
		if _, ok := ids[e.SourceID]; !ok {
			errs = append(errs, fmt.Sprintf("Edge %s references non-existent source node %s", e.ID, e.SourceID))
		}
		if _, ok := ids[e.TargetID]; !ok {
			errs = append(errs, fmt.Sprintf("Edge %s references non-existent target node %s", e.ID, e.TargetID))
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
