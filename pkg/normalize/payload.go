package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// =============================================================================
// Shape A - legacy response
// =============================================================================

// LegacyResponse is the legacy backend payload: nodes, relationships and a
// traversal metadata block.
type LegacyResponse struct {
	Nodes         []LegacyNode         `json:"nodes"`
	Relationships []LegacyRelationship `json:"relationships"`
	Metadata      *LegacyMetadata      `json:"metadata,omitempty"`
}

// LegacyNode is a node in a [LegacyResponse].
type LegacyNode struct {
	ID       Text              `json:"id"`
	Name     Text              `json:"name"`
	Type     Text              `json:"type"`
	Schema   Text              `json:"schema,omitempty"`
	Database Text              `json:"database,omitempty"`
	Columns  []LegacyColumn    `json:"columns,omitempty"`
	Metadata map[string]any    `json:"metadata,omitempty"`
	Position *lineage.Position `json:"position,omitempty"`
}

// LegacyColumn is a column of a legacy table or view node. Older payloads
// use "type" for the data type.
type LegacyColumn struct {
	Name           Text `json:"name"`
	DataType       Text `json:"dataType,omitempty"`
	Type           Text `json:"type,omitempty"`
	Classification Text `json:"classification,omitempty"`
}

// LegacyRelationship is an edge in a [LegacyResponse].
type LegacyRelationship struct {
	ID                  Text           `json:"id"`
	SourceNodeID        Text           `json:"sourceNodeId"`
	TargetNodeID        Text           `json:"targetNodeId"`
	RelationshipType    Text           `json:"relationshipType"`
	SourceColumns       []string       `json:"sourceColumns,omitempty"`
	TargetColumns       []string       `json:"targetColumns,omitempty"`
	TransformationLogic Text           `json:"transformationLogic,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// LegacyMetadata is the traversal block of a [LegacyResponse].
type LegacyMetadata struct {
	QueryDepth   int  `json:"queryDepth,omitempty"`
	Direction    Text `json:"direction,omitempty"`
	RootEntityID Text `json:"rootEntityId,omitempty"`
}

// =============================================================================
// Shape B - server contract
// =============================================================================

// ServerResponse is the current backend payload. It carries no traversal
// metadata.
type ServerResponse struct {
	Nodes []ServerNode `json:"nodes"`
	Edges []ServerEdge `json:"edges"`
}

// ServerNode is a node in a [ServerResponse].
type ServerNode struct {
	ID            Text           `json:"id"`
	NodeType      Text           `json:"node_type"`
	NodeName      Text           `json:"node_name"`
	QualifiedName Text           `json:"qualified_name,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	JobID         any            `json:"jobId,omitempty"`
	System        Text           `json:"system,omitempty"`
}

// ServerEdge is an edge in a [ServerResponse].
type ServerEdge struct {
	RelationshipID   Text           `json:"relationship_id"`
	SourceNodeID     Text           `json:"source_node_id"`
	TargetNodeID     Text           `json:"target_node_id"`
	RelationshipType Text           `json:"relationship_type"`
	SourceMeta       map[string]any `json:"source_meta,omitempty"`
	TargetMeta       map[string]any `json:"target_meta,omitempty"`
	Confidence       any            `json:"confidence,omitempty"`
	IsVerified       any            `json:"is_verified,omitempty"`
	JobID            any            `json:"jobId,omitempty"`
}

// =============================================================================
// Text - lenient scalar
// =============================================================================

// Text is a string field that also accepts JSON numbers, booleans and null.
// Backends are inconsistent about quoting identifiers.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected scalar, got %s", kindOf(b[0]))
	default:
		*t = Text(b)
		return nil
	}
}

// String returns t as a plain string.
func (t Text) String() string { return string(t) }

func kindOf(c byte) string {
	if c == '{' {
		return "object"
	}
	return "array"
}
