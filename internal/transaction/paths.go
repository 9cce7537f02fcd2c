package transaction

import "strings"

// PathRow is one display segment of a transaction's traversal
type PathRow struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Source        string `json:"source"`
	Target        string `json:"target"`
	Method        string `json:"method"`
	Path          string `json:"path"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	IsFirstRow    bool   `json:"isFirstRow"`
	IsLastRow     bool   `json:"isLastRow"`
}

// UnresolvedFunc receives edges whose endpoint is missing from the node list
type UnresolvedFunc func(edgeID, endpointID string)

// ReconstructPaths derives the ordered path rows of a snapshot.
// Rows follow the selection's edge order. Without a selection, or with an
// empty edge list, a single row built from the transaction-level fields is
// returned.
func ReconstructPaths(s *Snapshot) []PathRow {
	return ReconstructPathsWith(s, nil)
}

// ReconstructPathsWith is ReconstructPaths with a callback for endpoints that
// fall back to their raw node id.
func ReconstructPathsWith(s *Snapshot, onUnresolved UnresolvedFunc) []PathRow {
	if s.SelectedElements == nil || len(s.SelectedElements.Edges) == 0 {
		return []PathRow{{
			ID:            s.ID + "-single",
			TransactionID: s.ID,
			Source:        s.SourceNode,
			Target:        s.TargetNode,
			Method:        s.Request.Method,
			Path:          s.Request.Path,
			Status:        s.Status,
			Timestamp:     s.Timestamp,
			IsFirstRow:    true,
			IsLastRow:     true,
		}}
	}

	labels := nodeLabels(s.SelectedElements.Nodes)
	edges := s.SelectedElements.Edges
	rows := make([]PathRow, 0, len(edges))

	for i, edge := range edges {
		var data EdgeData
		if edge.Data != nil {
			data = *edge.Data
		}

		rows = append(rows, PathRow{
			ID:            s.ID + "-" + edge.ID,
			TransactionID: s.ID,
			Source:        resolveLabel(labels, edge.ID, edge.Source, onUnresolved),
			Target:        resolveLabel(labels, edge.ID, edge.Target, onUnresolved),
			Method:        override(data.Operation, s.Request.Method),
			Path:          override(data.Path, s.Request.Path),
			Status:        override(data.Status, s.Status),
			Timestamp:     override(data.Timestamp, s.Timestamp),
			IsFirstRow:    i == 0,
			IsLastRow:     i == len(edges)-1,
		})
	}

	return rows
}

// ReconstructAll flattens the rows of several snapshots, keeping each
// snapshot's rows contiguous and snapshots in the given order.
func ReconstructAll(snapshots []Snapshot) []PathRow {
	var rows []PathRow
	for i := range snapshots {
		rows = append(rows, ReconstructPaths(&snapshots[i])...)
	}
	return rows
}

// nodeLabels indexes node labels by id. The first node wins on duplicate ids.
func nodeLabels(nodes []Node) map[string]string {
	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if _, seen := labels[n.ID]; !seen {
			labels[n.ID] = n.Data.Label
		}
	}
	return labels
}

func resolveLabel(labels map[string]string, edgeID, nodeID string, onUnresolved UnresolvedFunc) string {
	label, ok := labels[nodeID]
	if !ok && onUnresolved != nil {
		onUnresolved(edgeID, nodeID)
	}
	if label == "" {
		return nodeID
	}
	return label
}

func override(edgeValue, txValue string) string {
	if edgeValue != "" {
		return edgeValue
	}
	return txValue
}

// Tone is the display tone for a status
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneWarning Tone = "warning"
	ToneDefault Tone = "default"
)

// StatusTone maps a transaction or edge status to a display tone
func StatusTone(status string) Tone {
	switch strings.ToLower(status) {
	case "success", "performed", "passed":
		return ToneSuccess
	case "failed", "error":
		return ToneError
	case "pending", "running", "testing":
		return ToneWarning
	default:
		return ToneDefault
	}
}
