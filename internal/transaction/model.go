// Package transaction holds the saved transaction snapshot model and the
// path view derived from its frozen graph selection.
package transaction

import (
	"encoding/json"
	"errors"
	"strings"
)

// Header is a header mapping with case-insensitive lookup
type Header map[string]string

// Get returns the value for key, ignoring case
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	if v, ok := h[key]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Clone returns a copy of h
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Request describes the recorded outbound request
type Request struct {
	Method  string          `json:"method"`
	Path    string          `json:"path"`
	Headers Header          `json:"headers"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// Response describes the recorded response
type Response struct {
	Status  int             `json:"status"`
	Headers Header          `json:"headers"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// Test is the test script attached to a transaction
type Test struct {
	Script  string `json:"script"`
	Enabled bool   `json:"enabled"`
	Result  string `json:"result,omitempty"`
}

// Position is a node position on the editor canvas
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the payload of a system node
type NodeData struct {
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// Node is a system node captured in a selection
type Node struct {
	ID       string    `json:"id"`
	Type     string    `json:"type,omitempty"`
	Position *Position `json:"position,omitempty"`
	Data     NodeData  `json:"data"`
}

// EdgeData holds the per-edge overrides
type EdgeData struct {
	TransactionID string `json:"transactionId,omitempty"`
	Operation     string `json:"operation,omitempty"`
	Path          string `json:"path,omitempty"`
	Status        string `json:"status,omitempty"`
	TestStatus    string `json:"testStatus,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// Edge is a directed transaction edge captured in a selection
type Edge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Data   *EdgeData `json:"data,omitempty"`
}

// SelectedElements is the frozen subgraph saved with a transaction
type SelectedElements struct {
	NodeIDs []string `json:"nodeIds"`
	EdgeIDs []string `json:"edgeIds"`
	Nodes   []Node   `json:"nodes"`
	Edges   []Edge   `json:"edges"`
}

// Snapshot is an immutable saved transaction record
type Snapshot struct {
	ID               string            `json:"id"`
	TransactionID    string            `json:"transactionId"`
	SourceNode       string            `json:"sourceNode"`
	TargetNode       string            `json:"targetNode"`
	Status           string            `json:"status"`
	Timestamp        string            `json:"timestamp"`
	Request          Request           `json:"request"`
	Response         *Response         `json:"response,omitempty"`
	Test             *Test             `json:"test,omitempty"`
	SelectedElements *SelectedElements `json:"selectedElements,omitempty"`
}

var (
	ErrMissingID     = errors.New("transaction id is required")
	ErrMissingMethod = errors.New("request method is required")
	ErrMissingPath   = errors.New("request path is required")
)

// Validate checks the fields every snapshot must carry
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return ErrMissingID
	}
	if s.Request.Method == "" {
		return ErrMissingMethod
	}
	if s.Request.Path == "" {
		return ErrMissingPath
	}
	return nil
}
