package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

func sampleGraph() *lineage.Graph {
	g := lineage.New(lineage.Traversal{Depth: 3, Direction: lineage.DirectionBoth, RootEntityID: "tbl_account"})
	g.Nodes = append(g.Nodes,
		lineage.Node{ID: "tbl_account", Kind: "table", Label: "Account", Position: lineage.AutoLayout(0, 2), AutoPlaced: true,
			Columns: []lineage.Column{{Name: "user_id", DataType: "uuid"}}},
		lineage.Node{ID: "tbl_payment", Kind: "table", Label: "Payment", Position: lineage.Position{X: 400, Y: 100},
			Metadata: lineage.Metadata{"system": "core"}},
	)
	g.Edges = append(g.Edges,
		lineage.Edge{ID: "r1", SourceID: "tbl_account", TargetID: "tbl_payment", RelationshipKind: "join",
			Label: "user_id → id", Style: lineage.StyleFor("join"),
			ColumnMapping: &lineage.ColumnMapping{SourceColumns: []string{"user_id"}, TargetColumns: []string{"id"}}},
		lineage.Edge{ID: "r2", SourceID: "tbl_payment", TargetID: "tbl_payment", RelationshipKind: "transformation",
			Label: "transformation", Style: lineage.StyleFor("transformation"), TransformationLogic: "SELECT 1"},
	)
	return g
}

func TestFromLineage(t *testing.T) {
	tests := []struct {
		name  string
		build func() *lineage.Graph
		check func(t *testing.T, r Renderable)
	}{
		{
			name:  "Empty",
			build: func() *lineage.Graph { return lineage.New(lineage.Traversal{}) },
			check: func(t *testing.T, r Renderable) {
				if len(r.Nodes) != 0 || len(r.Edges) != 0 {
					t.Errorf("got %d nodes, %d edges, want empty", len(r.Nodes), len(r.Edges))
				}
			},
		},
		{
			name:  "NodeShape",
			build: sampleGraph,
			check: func(t *testing.T, r Renderable) {
				n := r.Nodes[0]
				if n.Type != NodeTypeEntity {
					t.Errorf("type = %q, want %q", n.Type, NodeTypeEntity)
				}
				if n.Position != (lineage.Position{X: 100, Y: 100}) {
					t.Errorf("position = %+v", n.Position)
				}
				if n.Data.Label != "Account" || n.Data.Kind != "table" {
					t.Errorf("data = %+v", n.Data)
				}
				if r.Nodes[1].Data.Metadata["system"] != "core" {
					t.Errorf("metadata = %v", r.Nodes[1].Data.Metadata)
				}
			},
		},
		{
			name:  "EdgeStyles",
			build: sampleGraph,
			check: func(t *testing.T, r Renderable) {
				join, tr := r.Edges[0], r.Edges[1]
				if join.Type != EdgeTypeSmoothed {
					t.Errorf("type = %q", join.Type)
				}
				if join.Style != (EdgeStyle{Stroke: "#3b82f6", StrokeWidth: 2}) || join.Animated {
					t.Errorf("join style = %+v animated=%v", join.Style, join.Animated)
				}
				if tr.Style.StrokeDasharray != "5,5" || !tr.Animated {
					t.Errorf("transformation style = %+v animated=%v", tr.Style, tr.Animated)
				}
				if join.Label != "user_id → id" {
					t.Errorf("label = %q", join.Label)
				}
				if join.Data.ColumnMapping == nil || join.Data.ColumnMapping.TargetColumns[0] != "id" {
					t.Errorf("column mapping = %+v", join.Data.ColumnMapping)
				}
			},
		},
		{
			name:  "Traversal",
			build: sampleGraph,
			check: func(t *testing.T, r Renderable) {
				if r.Traversal.RootEntityID != "tbl_account" || r.Traversal.Depth != 3 {
					t.Errorf("traversal = %+v", r.Traversal)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, FromLineage(tt.build()))
		})
	}
}

func TestToLineageRoundTrip(t *testing.T) {
	g := sampleGraph()
	back := ToLineage(FromLineage(g))
	if !reflect.DeepEqual(g, back) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, g)
	}
}

func TestToLineageRederivesStyle(t *testing.T) {
	r := FromLineage(sampleGraph())
	r.Edges[0].Style = EdgeStyle{Stroke: "#ff0000", StrokeWidth: 9}

	g := ToLineage(r)
	if g.Edges[0].Style != lineage.StyleFor("join") {
		t.Errorf("style = %+v, want join style", g.Edges[0].Style)
	}
}

func TestMarshalRenderable(t *testing.T) {
	data, err := MarshalRenderable(sampleGraph())
	if err != nil {
		t.Fatalf("MarshalRenderable: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"nodes", "edges", "traversal"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if !strings.Contains(string(data), `"strokeDasharray": "5,5"`) {
		t.Errorf("dashed edge missing dasharray:\n%s", data)
	}
	if !strings.Contains(string(data), "user_id → id") {
		t.Errorf("label was escaped:\n%s", data)
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
		check     func(t *testing.T, g *lineage.Graph)
	}{
		{
			name: "Valid",
			input: `{
				"nodes": [
					{"id": "A", "kind": "table", "displayLabel": "A", "position": {"x": 1, "y": 2}},
					{"id": "B", "kind": "view"}
				],
				"edges": [
					{"id": "e1", "sourceId": "A", "targetId": "B", "relationshipKind": "transformation"}
				],
				"traversalMetadata": {"depth": 2, "direction": "upstream", "rootEntityId": "A"}
			}`,
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, g *lineage.Graph) {
				n, ok := g.FindNode("A")
				if !ok {
					t.Fatal("node A not found")
				}
				if n.Position.X != 1 || n.Position.Y != 2 {
					t.Errorf("position = %+v", n.Position)
				}
				if !g.Edges[0].Style.Dashed {
					t.Error("style not derived from relationship kind")
				}
				if g.Traversal.Direction != lineage.DirectionUpstream {
					t.Errorf("direction = %q", g.Traversal.Direction)
				}
			},
		},
		{
			name:      "Empty",
			input:     `{}`,
			wantNodes: 0,
			wantEdges: 0,
			check: func(t *testing.T, g *lineage.Graph) {
				if g.Nodes == nil || g.Edges == nil {
					t.Error("expected non-nil slices")
				}
			},
		},
		{
			name:    "Invalid",
			input:   `{invalid json}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}

			if got := g.NodeCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := g.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph()

	canonical := filepath.Join(dir, "lineage.json")
	if err := WriteGraphFile(g, canonical); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(canonical)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Errorf("canonical round trip mismatch:\n got %+v\nwant %+v", got, g)
	}

	renderable := filepath.Join(dir, "renderable.json")
	if err := WriteRenderableFile(g, renderable); err != nil {
		t.Fatalf("WriteRenderableFile: %v", err)
	}
	got, err = ReadRenderableFile(renderable)
	if err != nil {
		t.Fatalf("ReadRenderableFile: %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Errorf("renderable round trip mismatch:\n got %+v\nwant %+v", got, g)
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
	if _, err := ReadRenderableFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestWriteGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraph(sampleGraph(), &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}

	var result lineage.Graph
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(result.Nodes))
	}
}

func TestUnmarshalRenderable(t *testing.T) {
	data, err := MarshalRenderable(sampleGraph())
	if err != nil {
		t.Fatal(err)
	}
	r, err := UnmarshalRenderable(data)
	if err != nil {
		t.Fatalf("UnmarshalRenderable: %v", err)
	}
	if len(r.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(r.Edges))
	}
	if _, err := UnmarshalRenderable([]byte("nope")); err == nil {
		t.Error("expected error")
	}
}
