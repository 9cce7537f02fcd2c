package binding

import (
	"context"
	"encoding/json"
	"fmt"

	"restui/internal/eventlog"
	"restui/internal/logger"
)

// TestEventInput is the frontend shape of a test lifecycle event
type TestEventInput struct {
	ScenarioID    string                `json:"scenarioId"`
	ScenarioRunID string                `json:"scenarioRunId"`
	Content       string                `json:"content"`
	Status        eventlog.RunStatus    `json:"status"`
	Color         string                `json:"color"`
	Details       *eventlog.TestDetails `json:"details,omitempty"`
}

// LogBinding provides frontend bindings for the API and test logs
type LogBinding struct {
	ctx context.Context
	agg *eventlog.Aggregator
	log logger.Logger
}

// NewLogBinding creates a new LogBinding instance
func NewLogBinding(agg *eventlog.Aggregator, log logger.Logger) *LogBinding {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogBinding{agg: agg, log: log.With("binding", "log")}
}

// SetContext sets the Wails runtime context and routes log updates to it
func (l *LogBinding) SetContext(ctx context.Context) {
	l.ctx = ctx
	l.agg.SetEmitter(eventlog.NewWailsEventEmitter(ctx))
}

// State returns {apiLogs, testLogs, selectedTab, surfaced}
func (l *LogBinding) State() eventlog.State {
	return l.agg.State()
}

// Merged returns both logs interleaved newest first
func (l *LogBinding) Merged() []eventlog.Entry {
	return l.agg.Merged()
}

// SetActiveLog switches between the API (0) and test (1) log
func (l *LogBinding) SetActiveLog(index int) error {
	return l.agg.SetActiveLog(index)
}

// SetSurfaced opens or closes the log drawer
func (l *LogBinding) SetSurfaced(surfaced bool) {
	l.agg.SetSurfaced(surfaced)
}

// ClearAll empties both logs
func (l *LogBinding) ClearAll() {
	l.agg.ClearAll()
}

// RecordAPICall logs a request completed by the frontend
func (l *LogBinding) RecordAPICall(method, url string, request, response any) error {
	req, resp, err := encodePair(request, response)
	if err != nil {
		l.log.Warn("Dropped API call with unencodable payload", "method", method, "url", url, "error", err)
		return err
	}
	l.agg.RecordAPICall(method, url, req, resp)
	return nil
}

// RecordTestEvent logs a test lifecycle point reported by the frontend
func (l *LogBinding) RecordTestEvent(in TestEventInput) {
	l.agg.RecordTestEvent(in.ScenarioID, in.ScenarioRunID, in.Content, in.Status, in.Color, in.Details)
}

// OnAPICall accepts the generic (method, url, request, response) callback;
// TEST_LOG calls are routed to the test log.
func (l *LogBinding) OnAPICall(method, url string, request, response any) error {
	req, resp, err := encodePair(request, response)
	if err != nil {
		return err
	}
	ev := l.agg.Route(method, url, req, resp)
	l.log.Debug("Routed collaborator call", "method", method, "kind", ev.Kind())
	return nil
}

func encodePair(request, response any) (json.RawMessage, json.RawMessage, error) {
	req, err := encode(request)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := encode(response)
	if err != nil {
		return nil, nil, fmt.Errorf("encode response: %w", err)
	}
	return req, resp, nil
}

func encode(v any) (json.RawMessage, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return t, nil
	case []byte:
		return json.RawMessage(t), nil
	}
	return json.Marshal(v)
}
