package mock

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/integrations"
	"github.com/lineagekit/lineagekit/pkg/lineage"
	"github.com/lineagekit/lineagekit/pkg/normalize"
)

// Options configures a [Source].
type Options struct {
	Catalog *Catalog        // nil = DefaultCatalog()
	Shape   normalize.Shape // payload shape to emit; "" = server
	Latency time.Duration   // artificial delay per fetch
}

// Source serves lineage from a [Catalog] with the backend's contract.
// It is safe for concurrent use; the catalog is never mutated.
type Source struct {
	catalog *Catalog
	shape   normalize.Shape
	latency time.Duration
}

// New creates a mock source.
func New(opts Options) (*Source, error) {
	shape, err := ParseShape(string(opts.Shape))
	if err != nil {
		return nil, err
	}
	c := opts.Catalog
	if c == nil {
		c = DefaultCatalog()
	}
	return &Source{catalog: c, shape: shape, latency: max(opts.Latency, 0)}, nil
}

// ParseShape parses a payload shape name. The empty string selects the
// server contract.
func ParseShape(s string) (normalize.Shape, error) {
	switch sh := normalize.Shape(strings.ToLower(strings.TrimSpace(s))); sh {
	case "":
		return normalize.ShapeServer, nil
	case normalize.ShapeLegacy, normalize.ShapeServer:
		return sh, nil
	default:
		return "", lkerr.New(lkerr.ErrCodeInvalidConfig, "unknown mock shape %q (want legacy or server)", s)
	}
}

// Name implements integrations.Source.
func (s *Source) Name() string { return "mock" }

// Catalog returns the catalog being served.
func (s *Source) Catalog() *Catalog { return s.catalog }

// FetchLineage implements integrations.Source.
func (s *Source) FetchLineage(ctx context.Context, entityID string, opts lineage.Options) ([]byte, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if _, ok := s.catalog.Entity(entityID); !ok {
		return nil, integrations.Classify(integrations.ErrNotFound, entityID)
	}

	entities, rels := s.catalog.Traverse(entityID, opts.Direction, opts.Depth)
	var payload any
	if s.shape == normalize.ShapeLegacy {
		payload = legacyPayload(entityID, opts, entities, rels)
	} else {
		payload = serverPayload(entities, rels)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, lkerr.Wrap(lkerr.ErrCodeInternal, err, "encode mock payload")
	}
	return data, nil
}

func (s *Source) wait(ctx context.Context) error {
	if s.latency == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func legacyPayload(root string, opts lineage.Options, entities []Entity, rels []Relationship) normalize.LegacyResponse {
	resp := normalize.LegacyResponse{
		Nodes:         make([]normalize.LegacyNode, 0, len(entities)),
		Relationships: make([]normalize.LegacyRelationship, 0, len(rels)),
		Metadata: &normalize.LegacyMetadata{
			QueryDepth:   opts.Depth,
			Direction:    normalize.Text(opts.Direction),
			RootEntityID: normalize.Text(root),
		},
	}
	for _, e := range entities {
		n := normalize.LegacyNode{
			ID:       normalize.Text(e.ID),
			Name:     normalize.Text(e.Name),
			Type:     normalize.Text(e.Type),
			Schema:   normalize.Text(e.Schema),
			Database: normalize.Text(e.Database),
			Metadata: e.Metadata,
		}
		for _, c := range e.Columns {
			n.Columns = append(n.Columns, normalize.LegacyColumn{
				Name:           normalize.Text(c.Name),
				DataType:       normalize.Text(c.DataType),
				Classification: normalize.Text(c.Classification),
			})
		}
		resp.Nodes = append(resp.Nodes, n)
	}
	for _, r := range rels {
		var meta map[string]any
		if r.Confidence > 0 {
			meta = map[string]any{"confidence": r.Confidence, "verified": r.Verified}
		}
		resp.Relationships = append(resp.Relationships, normalize.LegacyRelationship{
			ID:                  normalize.Text(r.ID),
			SourceNodeID:        normalize.Text(r.Source),
			TargetNodeID:        normalize.Text(r.Target),
			RelationshipType:    normalize.Text(r.Type),
			SourceColumns:       r.SourceColumns,
			TargetColumns:       r.TargetColumns,
			TransformationLogic: normalize.Text(r.TransformationLogic),
			Metadata:            meta,
		})
	}
	return resp
}

func serverPayload(entities []Entity, rels []Relationship) normalize.ServerResponse {
	resp := normalize.ServerResponse{
		Nodes: make([]normalize.ServerNode, 0, len(entities)),
		Edges: make([]normalize.ServerEdge, 0, len(rels)),
	}
	for _, e := range entities {
		meta := map[string]any{}
		for k, v := range e.Metadata {
			meta[k] = v
		}
		if len(e.Columns) > 0 {
			cols := make([]map[string]any, 0, len(e.Columns))
			for _, c := range e.Columns {
				cols = append(cols, map[string]any{"name": c.Name, "dataType": c.DataType, "classification": c.Classification})
			}
			meta["columns"] = cols
		}
		if len(meta) == 0 {
			meta = nil
		}
		resp.Nodes = append(resp.Nodes, normalize.ServerNode{
			ID:            normalize.Text(e.ID),
			NodeType:      normalize.Text(e.Type),
			NodeName:      normalize.Text(e.Name),
			QualifiedName: normalize.Text(qualifiedName(e)),
			Metadata:      meta,
			JobID:         optional(e.JobID),
			System:        normalize.Text(e.System),
		})
	}
	for _, r := range rels {
		edge := normalize.ServerEdge{
			RelationshipID:   normalize.Text(r.ID),
			SourceNodeID:     normalize.Text(r.Source),
			TargetNodeID:     normalize.Text(r.Target),
			RelationshipType: normalize.Text(r.Type),
			JobID:            optional(r.JobID),
		}
		if r.Confidence > 0 {
			edge.Confidence = r.Confidence
			edge.IsVerified = r.Verified
		}
		if len(r.SourceColumns) > 0 || r.TransformationLogic != "" {
			edge.SourceMeta = map[string]any{}
			if len(r.SourceColumns) > 0 {
				edge.SourceMeta["column_name"] = r.SourceColumns[0]
			}
			if r.TransformationLogic != "" {
				edge.SourceMeta["transformation_logic"] = r.TransformationLogic
			}
		}
		if len(r.TargetColumns) > 0 {
			edge.TargetMeta = map[string]any{"column_name": r.TargetColumns[0]}
		}
		resp.Edges = append(resp.Edges, edge)
	}
	return resp
}

func qualifiedName(e Entity) string {
	if e.QualifiedName != "" {
		return e.QualifiedName
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Database, e.Schema, e.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts, ".")
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ integrations.Source = (*Source)(nil)
