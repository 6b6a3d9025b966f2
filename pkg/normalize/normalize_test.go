package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/lineage"
)

const serverPayload = `{
	"nodes": [
		{"id": "tbl_account", "node_type": "table", "node_name": "Account", "qualified_name": "core.public.account", "system": "postgres", "jobId": 17},
		{"id": "tbl_payment", "node_type": "table", "node_name": "Payment", "metadata": {"system": "override", "owner": "payments"}}
	],
	"edges": [
		{
			"relationship_id": "r1",
			"source_node_id": "tbl_account",
			"target_node_id": "tbl_payment",
			"relationship_type": "join",
			"source_meta": {"column_name": "user_id"},
			"target_meta": {"column_name": "id"},
			"confidence": 0.92,
			"is_verified": true,
			"jobId": "job-7"
		}
	]
}`

const legacyPayload = `{
	"nodes": [
		{"id": "tbl_account", "name": "Account", "type": "table", "schema": "public", "database": "core",
		 "columns": [{"name": "user_id", "type": "uuid", "classification": "PII"}]},
		{"id": "vw_balance", "name": "Balance", "type": "view", "position": {"x": 42, "y": 7}},
		{"id": "dash_kpi", "name": "KPIs", "type": "dashboard", "metadata": {"schema": "reporting", "owner": "finance"}}
	],
	"relationships": [
		{"id": "l1", "sourceNodeId": "tbl_account", "targetNodeId": "vw_balance", "relationshipType": "transformation",
		 "sourceColumns": ["user_id"], "targetColumns": ["account_id"], "transformationLogic": "SUM(amount)"},
		{"id": "l2", "sourceNodeId": "vw_balance", "targetNodeId": "dash_kpi", "relationshipType": "reference"}
	],
	"metadata": {"queryDepth": 2, "direction": "downstream", "rootEntityId": "tbl_account"}
}`

func TestServerRenderableEndToEnd(t *testing.T) {
	var resp ServerResponse
	require.NoError(t, json.Unmarshal([]byte(serverPayload), &resp))

	r := ServerRenderable(resp, lineage.Traversal{Depth: 3, Direction: lineage.DirectionBoth, RootEntityID: "tbl_account"})

	require.Len(t, r.Nodes, 2)
	assert.Equal(t, lineage.Position{X: 100, Y: 100}, r.Nodes[0].Position)
	assert.Equal(t, lineage.Position{X: 400, Y: 100}, r.Nodes[1].Position)

	require.Len(t, r.Edges, 1)
	e := r.Edges[0]
	assert.Equal(t, "user_id → id", e.Label)
	assert.Equal(t, "#3b82f6", e.Style.Stroke)
	assert.Equal(t, 2, e.Style.StrokeWidth)
	assert.False(t, e.Animated)
	assert.Equal(t, "join", e.Data.RelationshipType)
}

func TestServer(t *testing.T) {
	var resp ServerResponse
	require.NoError(t, json.Unmarshal([]byte(serverPayload), &resp))

	tr := lineage.Traversal{Depth: 2, Direction: lineage.DirectionUpstream, RootEntityID: "tbl_payment"}
	g := Server(resp, tr)

	assert.Equal(t, tr, g.Traversal)

	acct := g.Nodes[0]
	assert.Equal(t, "table", acct.Kind)
	assert.Equal(t, "Account", acct.Label)
	assert.True(t, acct.AutoPlaced)
	assert.Equal(t, "core.public.account", acct.Metadata["qualifiedName"])
	assert.Equal(t, "postgres", acct.Metadata["system"])
	assert.Equal(t, float64(17), acct.Metadata["jobId"])

	pay := g.Nodes[1]
	assert.Equal(t, "override", pay.Metadata["system"], "payload metadata wins")
	assert.Equal(t, "payments", pay.Metadata["owner"])

	e := g.Edges[0]
	assert.Equal(t, "r1", e.ID)
	assert.Equal(t, lineage.StyleFor("join"), e.Style)
	require.NotNil(t, e.ColumnMapping)
	assert.Equal(t, []string{"user_id"}, e.ColumnMapping.SourceColumns)
	assert.Equal(t, []string{"id"}, e.ColumnMapping.TargetColumns)
	assert.Equal(t, 0.92, e.Metadata["confidence"])
	assert.Equal(t, true, e.Metadata["is_verified"])
	assert.Equal(t, "job-7", e.Metadata["jobId"])
	assert.Equal(t, map[string]any{"column_name": "user_id"}, e.Metadata["source_meta"])
}

func TestServerEdgeLabelFallback(t *testing.T) {
	resp := ServerResponse{Edges: []ServerEdge{
		{RelationshipID: "a", SourceNodeID: "x", TargetNodeID: "y", RelationshipType: "transformation",
			SourceMeta: map[string]any{"column_name": "only_source"}},
		{RelationshipID: "b", SourceNodeID: "x", TargetNodeID: "y"},
	}}
	g := Server(resp, lineage.Traversal{})

	assert.Equal(t, "transformation", g.Edges[0].Label)
	assert.Nil(t, g.Edges[0].ColumnMapping)
	assert.True(t, g.Edges[0].Style.Animated)
	assert.Equal(t, "", g.Edges[1].Label)
	assert.Equal(t, lineage.DefaultStyle, g.Edges[1].Style)
}

func TestLegacy(t *testing.T) {
	var resp LegacyResponse
	require.NoError(t, json.Unmarshal([]byte(legacyPayload), &resp))

	g := Legacy(resp)

	assert.Equal(t, lineage.Traversal{Depth: 2, Direction: lineage.DirectionDownstream, RootEntityID: "tbl_account"}, g.Traversal)
	require.Len(t, g.Nodes, 3)

	acct := g.Nodes[0]
	assert.Equal(t, lineage.AutoLayout(0, 3), acct.Position)
	assert.True(t, acct.AutoPlaced)
	assert.Equal(t, lineage.Metadata{"schema": "public", "database": "core"}, acct.Metadata)
	assert.Equal(t, []lineage.Column{{Name: "user_id", DataType: "uuid", Classification: "PII"}}, acct.Columns)

	bal := g.Nodes[1]
	assert.Equal(t, lineage.Position{X: 42, Y: 7}, bal.Position)
	assert.False(t, bal.AutoPlaced)
	assert.Nil(t, bal.Metadata)

	dash := g.Nodes[2]
	assert.Equal(t, lineage.AutoLayout(2, 3), dash.Position)
	assert.Equal(t, "reporting", dash.Metadata["schema"], "payload metadata wins")

	require.Len(t, g.Edges, 2)
	tr := g.Edges[0]
	assert.Equal(t, "transformation", tr.Label)
	assert.Equal(t, lineage.StyleFor("transformation"), tr.Style)
	assert.Equal(t, "SUM(amount)", tr.TransformationLogic)
	require.NotNil(t, tr.ColumnMapping)
	assert.Equal(t, []string{"account_id"}, tr.ColumnMapping.TargetColumns)

	assert.Nil(t, g.Edges[1].ColumnMapping)
	assert.Equal(t, lineage.StyleFor("reference"), g.Edges[1].Style)

	assert.True(t, lineage.Validate(g).IsValid)
}

func TestLegacyIdempotent(t *testing.T) {
	var a, b LegacyResponse
	require.NoError(t, json.Unmarshal([]byte(legacyPayload), &a))
	require.NoError(t, json.Unmarshal([]byte(legacyPayload), &b))

	assert.Equal(t, Legacy(a), Legacy(b))
	assert.Equal(t, Legacy(a), Legacy(a))
}

func TestLegacyWithFillsGaps(t *testing.T) {
	resp := LegacyResponse{Metadata: &LegacyMetadata{QueryDepth: 5}}
	g := LegacyWith(resp, lineage.Traversal{Depth: 3, Direction: lineage.DirectionUpstream, RootEntityID: "caller"})

	assert.Equal(t, 5, g.Traversal.Depth)
	assert.Equal(t, lineage.DirectionUpstream, g.Traversal.Direction)
	assert.Equal(t, "caller", g.Traversal.RootEntityID)
}

func TestSynthesizedEdgeIDsAreStable(t *testing.T) {
	resp := ServerResponse{Edges: []ServerEdge{{SourceNodeID: "a", TargetNodeID: "b", RelationshipType: "join"}}}
	first := Server(resp, lineage.Traversal{})
	second := Server(resp, lineage.Traversal{})

	assert.True(t, strings.HasPrefix(first.Edges[0].ID, "edge-"))
	assert.Equal(t, first.Edges[0].ID, second.Edges[0].ID)
}

func TestSynthesizedEdgeIDsIgnorePosition(t *testing.T) {
	ab := ServerEdge{SourceNodeID: "a", TargetNodeID: "b", RelationshipType: "join"}
	bc := ServerEdge{SourceNodeID: "b", TargetNodeID: "c", RelationshipType: "join"}

	first := Server(ServerResponse{Edges: []ServerEdge{ab}}, lineage.Traversal{})
	second := Server(ServerResponse{Edges: []ServerEdge{bc, ab}}, lineage.Traversal{})
	assert.Equal(t, first.Edges[0].ID, second.Edges[1].ID)

	legacy := Legacy(LegacyResponse{Relationships: []LegacyRelationship{
		{SourceNodeID: "b", TargetNodeID: "c", RelationshipType: "join"},
		{SourceNodeID: "a", TargetNodeID: "b", RelationshipType: "join"},
	}})
	assert.Equal(t, first.Edges[0].ID, legacy.Edges[1].ID)

	other := Server(ServerResponse{Edges: []ServerEdge{{SourceNodeID: "a", TargetNodeID: "b", RelationshipType: "reference"}}}, lineage.Traversal{})
	assert.NotEqual(t, first.Edges[0].ID, other.Edges[0].ID, "kind is part of the id")

	repeated := Server(ServerResponse{Edges: []ServerEdge{ab, bc, ab}}, lineage.Traversal{})
	assert.Equal(t, first.Edges[0].ID, repeated.Edges[0].ID)
	assert.NotEqual(t, repeated.Edges[0].ID, repeated.Edges[2].ID, "repeats within a payload stay distinct")
}

func TestDecode(t *testing.T) {
	tr := lineage.Traversal{Depth: 3, Direction: lineage.DirectionBoth, RootEntityID: "tbl_account"}

	tests := []struct {
		name      string
		input     string
		wantShape Shape
		wantNodes int
		wantEdges int
		wantWarn  bool
		wantErr   bool
	}{
		{name: "server", input: serverPayload, wantShape: ShapeServer, wantNodes: 2, wantEdges: 1},
		{name: "legacy", input: legacyPayload, wantShape: ShapeLegacy, wantNodes: 3, wantEdges: 2},
		{name: "nodes only", input: `{"nodes": [{"id": "a", "name": "A", "type": "table"}]}`, wantShape: ShapeLegacy, wantNodes: 1, wantWarn: true},
		{name: "empty edges key", input: `{"nodes": [], "edges": []}`, wantShape: ShapeServer},
		{name: "missing fields", input: `{"nodes": [{"id": 42}], "edges": [{"source_node_id": "42"}]}`, wantShape: ShapeServer, wantNodes: 1, wantEdges: 1, wantWarn: true},
		{name: "not json", input: `{nodes`, wantErr: true},
		{name: "array", input: `[1, 2]`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
		{name: "wrong field type", input: `{"nodes": "oops"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, report, err := Decode([]byte(tt.input), tr)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, lkerr.Is(err, lkerr.ErrCodeInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantShape, report.Shape)
			assert.Len(t, g.Nodes, tt.wantNodes)
			assert.Len(t, g.Edges, tt.wantEdges)
			assert.Equal(t, tt.wantWarn, len(report.Warnings) > 0, "warnings: %v", report.Warnings)
		})
	}
}

func TestDecodeNumericIDs(t *testing.T) {
	g, _, err := Decode([]byte(`{"nodes": [{"id": 42, "node_type": "table", "node_name": "n"}], "edges": []}`), lineage.Traversal{})
	require.NoError(t, err)
	assert.Equal(t, "42", g.Nodes[0].ID)
}

func TestDetect(t *testing.T) {
	shape, err := Detect([]byte(serverPayload))
	require.NoError(t, err)
	assert.Equal(t, ShapeServer, shape)

	shape, err = Detect([]byte(legacyPayload))
	require.NoError(t, err)
	assert.Equal(t, ShapeLegacy, shape)

	_, err = Detect([]byte(`"string"`))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	w := CheckServer(ServerResponse{
		Nodes: []ServerNode{{}, {ID: "n"}},
		Edges: []ServerEdge{{}},
	})
	assert.Equal(t, []string{
		"node 0: missing id",
		"node n: missing node_name",
		"node n: missing node_type",
		"edge #0: missing relationship_id",
		"edge #0: missing source_node_id",
		"edge #0: missing target_node_id",
		"edge #0: missing relationship_type",
	}, w)

	var resp LegacyResponse
	require.NoError(t, json.Unmarshal([]byte(legacyPayload), &resp))
	assert.Empty(t, CheckLegacy(resp))
}
