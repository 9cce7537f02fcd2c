package transaction

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSnapshot() *Snapshot {
	return &Snapshot{
		ID:            "tx-1",
		TransactionID: "order-flow",
		SourceNode:    "Web Shop",
		TargetNode:    "Billing",
		Status:        "success",
		Timestamp:     "2024-05-01T10:00:00Z",
		Request: Request{
			Method:  "GET",
			Path:    "/orders",
			Headers: Header{"Accept": "application/json"},
		},
	}
}

// threeEdgeSnapshot has a middle edge whose endpoints are absent from the node list
func threeEdgeSnapshot() *Snapshot {
	s := baseSnapshot()
	s.SelectedElements = &SelectedElements{
		NodeIDs: []string{"n1", "n2", "n4"},
		EdgeIDs: []string{"e1", "e2", "e3"},
		Nodes: []Node{
			{ID: "n1", Data: NodeData{Label: "Web Shop"}},
			{ID: "n2", Data: NodeData{Label: "Order Service"}},
			{ID: "n4", Data: NodeData{Label: "Billing"}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "n1", Target: "n2", Data: &EdgeData{Operation: "POST", Path: "/orders"}},
			{ID: "e2", Source: "n9", Target: "n3"},
			{ID: "e3", Source: "n2", Target: "n4", Data: &EdgeData{Status: "failed", Timestamp: "2024-05-01T10:00:02Z"}},
		},
	}
	return s
}

func TestReconstructPaths_NoSelection(t *testing.T) {
	s := baseSnapshot()

	rows := ReconstructPaths(s)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "tx-1-single", row.ID)
	assert.Equal(t, "tx-1", row.TransactionID)
	assert.Equal(t, "Web Shop", row.Source)
	assert.Equal(t, "Billing", row.Target)
	assert.Equal(t, "GET", row.Method)
	assert.Equal(t, "/orders", row.Path)
	assert.Equal(t, "success", row.Status)
	assert.Equal(t, "2024-05-01T10:00:00Z", row.Timestamp)
	assert.True(t, row.IsFirstRow)
	assert.True(t, row.IsLastRow)
}

func TestReconstructPaths_EmptyEdgeList(t *testing.T) {
	s := baseSnapshot()
	s.SelectedElements = &SelectedElements{
		Nodes: []Node{{ID: "n1", Data: NodeData{Label: "Web Shop"}}},
	}

	rows := ReconstructPaths(s)

	require.Len(t, rows, 1)
	assert.Equal(t, "tx-1-single", rows[0].ID)
	assert.True(t, rows[0].IsFirstRow && rows[0].IsLastRow)
}

func TestReconstructPaths_EdgeOrderAndFlags(t *testing.T) {
	rows := ReconstructPaths(threeEdgeSnapshot())

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"tx-1-e1", "tx-1-e2", "tx-1-e3"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})

	first, last := 0, 0
	for _, r := range rows {
		if r.IsFirstRow {
			first++
		}
		if r.IsLastRow {
			last++
		}
	}
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, last)
	assert.True(t, rows[0].IsFirstRow)
	assert.True(t, rows[2].IsLastRow)
}

func TestReconstructPaths_UnresolvedEndpointsFallBackToRawID(t *testing.T) {
	var unresolved []string
	rows := ReconstructPathsWith(threeEdgeSnapshot(), func(edgeID, endpointID string) {
		unresolved = append(unresolved, edgeID+":"+endpointID)
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "Web Shop", rows[0].Source)
	assert.Equal(t, "Order Service", rows[0].Target)
	assert.Equal(t, "n9", rows[1].Source)
	assert.Equal(t, "n3", rows[1].Target)
	assert.Equal(t, "Order Service", rows[2].Source)
	assert.Equal(t, "Billing", rows[2].Target)
	assert.Equal(t, []string{"e2:n9", "e2:n3"}, unresolved)
}

func TestReconstructPaths_OverridesThenTransactionLevel(t *testing.T) {
	rows := ReconstructPaths(threeEdgeSnapshot())

	assert.Equal(t, "POST", rows[0].Method)
	assert.Equal(t, "success", rows[0].Status)

	assert.Equal(t, "GET", rows[1].Method)
	assert.Equal(t, "/orders", rows[1].Path)

	assert.Equal(t, "failed", rows[2].Status)
	assert.Equal(t, "2024-05-01T10:00:02Z", rows[2].Timestamp)
}

func TestReconstructPaths_EmptyOverrideFallsThrough(t *testing.T) {
	s := baseSnapshot()
	s.SelectedElements = &SelectedElements{
		Nodes: []Node{{ID: "a", Data: NodeData{Label: "A"}}, {ID: "b", Data: NodeData{Label: ""}}},
		Edges: []Edge{{ID: "e", Source: "a", Target: "b", Data: &EdgeData{Operation: "", Path: ""}}},
	}

	rows := ReconstructPaths(s)

	require.Len(t, rows, 1)
	assert.Equal(t, "GET", rows[0].Method)
	assert.Equal(t, "/orders", rows[0].Path)
	assert.Equal(t, "b", rows[0].Target, "empty label displays the raw id")
	assert.Equal(t, "tx-1-e", rows[0].ID)
}

func TestReconstructPaths_Deterministic(t *testing.T) {
	s := threeEdgeSnapshot()

	a, err := json.Marshal(ReconstructPaths(s))
	require.NoError(t, err)
	b, err := json.Marshal(ReconstructPaths(s))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, threeEdgeSnapshot(), s, "input must not be mutated")
}

func TestReconstructPaths_Golden(t *testing.T) {
	data, err := json.MarshalIndent(ReconstructPaths(threeEdgeSnapshot()), "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "three_edge_paths", data)
}

func TestReconstructAll_KeepsTransactionsContiguous(t *testing.T) {
	single := baseSnapshot()
	single.ID = "tx-0"
	multi := threeEdgeSnapshot()

	rows := ReconstructAll([]Snapshot{*single, *multi})

	require.Len(t, rows, 4)
	assert.Equal(t, "tx-0", rows[0].TransactionID)
	for _, r := range rows[1:] {
		assert.Equal(t, "tx-1", r.TransactionID)
	}
	assert.True(t, rows[1].IsFirstRow)
	assert.True(t, rows[3].IsLastRow)
}

func TestStatusTone(t *testing.T) {
	cases := map[string]Tone{
		"success": ToneSuccess,
		"Failed":  ToneError,
		"error":   ToneError,
		"pending": ToneWarning,
		"running": ToneWarning,
		"open":    ToneDefault,
		"":        ToneDefault,
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusTone(status), status)
	}
}
