package transaction

import (
	"encoding/json"
	"fmt"
)

// flowSelection mirrors the editor's selection JSON loosely so that both the
// flow-node shape ({data:{label}}) and the flattened export shape ({label})
// decode into the same model.
type flowSelection struct {
	NodeIDs []string   `json:"nodeIds"`
	EdgeIDs []string   `json:"edgeIds"`
	Nodes   []flowNode `json:"nodes"`
	Edges   []flowEdge `json:"edges"`
}

type flowNode struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Label    string                 `json:"label"`
	Position *Position              `json:"position"`
	Data     map[string]interface{} `json:"data"`
}

type flowEdge struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Target    string                 `json:"target"`
	Operation string                 `json:"operation"`
	Path      string                 `json:"path"`
	Data      map[string]interface{} `json:"data"`
}

// ParseSelection decodes a selected-elements document produced by the editor
func ParseSelection(raw []byte) (*SelectedElements, error) {
	var flow flowSelection
	if err := json.Unmarshal(raw, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection: %w", err)
	}
	return flow.toModel(), nil
}

func (f *flowSelection) toModel() *SelectedElements {
	sel := &SelectedElements{
		NodeIDs: f.NodeIDs,
		EdgeIDs: f.EdgeIDs,
		Nodes:   make([]Node, 0, len(f.Nodes)),
		Edges:   make([]Edge, 0, len(f.Edges)),
	}

	for _, n := range f.Nodes {
		sel.Nodes = append(sel.Nodes, Node{
			ID:       n.ID,
			Type:     n.Type,
			Position: n.Position,
			Data: NodeData{
				Label: getStringField(n.Data, "label", n.Label),
				Type:  getStringField(n.Data, "type", ""),
			},
		})
	}

	for _, e := range f.Edges {
		edge := Edge{ID: e.ID, Source: e.Source, Target: e.Target}
		data := EdgeData{
			TransactionID: getStringField(e.Data, "transactionId", ""),
			Operation:     getStringField(e.Data, "operation", e.Operation),
			Path:          getStringField(e.Data, "path", e.Path),
			Status:        getStringField(e.Data, "status", ""),
			TestStatus:    getStringField(e.Data, "testStatus", ""),
			Timestamp:     getStringField(e.Data, "timestamp", ""),
		}
		if data != (EdgeData{}) {
			edge.Data = &data
		}
		sel.Edges = append(sel.Edges, edge)
	}

	// Older saves only carried the full objects.
	if len(sel.NodeIDs) == 0 && len(sel.Nodes) > 0 {
		for _, n := range sel.Nodes {
			sel.NodeIDs = append(sel.NodeIDs, n.ID)
		}
	}
	if len(sel.EdgeIDs) == 0 && len(sel.Edges) > 0 {
		for _, e := range sel.Edges {
			sel.EdgeIDs = append(sel.EdgeIDs, e.ID)
		}
	}

	return sel
}

// ParseSnapshot decodes a saved transaction as written by the editor.
// The selection part accepts the same shapes as ParseSelection.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	type plain Snapshot
	var doc struct {
		plain
		SelectedElements json.RawMessage `json:"selectedElements"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	snap := Snapshot(doc.plain)
	snap.SelectedElements = nil
	if len(doc.SelectedElements) > 0 && string(doc.SelectedElements) != "null" {
		sel, err := ParseSelection(doc.SelectedElements)
		if err != nil {
			return nil, err
		}
		snap.SelectedElements = sel
	}
	return &snap, nil
}

// getStringField safely extracts a string value from a decoded JSON object
func getStringField(data map[string]interface{}, key, defaultVal string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return defaultVal
}
