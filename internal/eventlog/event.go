// Package eventlog aggregates API call and test run telemetry into two
// newest-first logs and decides when the log presenter should surface.
package eventlog

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Kind tags the variant of an Event
type Kind string

const (
	KindAPICall Kind = "api"
	KindTestRun Kind = "test"
)

// Event is either an APICallEvent or a TestRunEvent
type Event interface {
	Kind() Kind
	Time() time.Time
	Sequence() uint64
	isEvent()
}

// Severity is derived from an API response status
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityCaution Severity = "caution"
	SeverityError   Severity = "error"
	SeverityNeutral Severity = "neutral"
)

// SeverityForStatus maps an HTTP status code to a Severity
func SeverityForStatus(status int) Severity {
	switch {
	case status >= 200 && status < 300:
		return SeveritySuccess
	case status >= 300 && status < 400:
		return SeverityCaution
	case status >= 400 && status < 600:
		return SeverityError
	default:
		return SeverityNeutral
	}
}

// APICallEvent records one completed outbound request
type APICallEvent struct {
	Method    string          `json:"method"`
	URL       string          `json:"url"`
	Request   json.RawMessage `json:"request,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
}

func (e APICallEvent) Kind() Kind       { return KindAPICall }
func (e APICallEvent) Time() time.Time  { return e.Timestamp }
func (e APICallEvent) Sequence() uint64 { return e.Seq }
func (APICallEvent) isEvent()           {}

// Status returns the response payload's status code, or 0 when absent
func (e APICallEvent) Status() int {
	if len(e.Response) == 0 {
		return 0
	}
	return int(gjson.GetBytes(e.Response, "status").Int())
}

// Severity derives the display severity from the response status
func (e APICallEvent) Severity() Severity {
	return SeverityForStatus(e.Status())
}

// RunStatus is the lifecycle state reported by a test run event
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// TestDetails carries the optional diagnostics of a test run event
type TestDetails struct {
	Suggestion string `json:"suggestion,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Actual     string `json:"actual,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TestRunEvent records one lifecycle point of a scenario run
type TestRunEvent struct {
	ScenarioID    string       `json:"scenarioId"`
	ScenarioRunID string       `json:"scenarioRunId"`
	Content       string       `json:"content"`
	Status        RunStatus    `json:"status"`
	Color         string       `json:"color"`
	Details       *TestDetails `json:"details,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	Seq           uint64       `json:"seq"`
}

func (e TestRunEvent) Kind() Kind       { return KindTestRun }
func (e TestRunEvent) Time() time.Time  { return e.Timestamp }
func (e TestRunEvent) Sequence() uint64 { return e.Seq }
func (TestRunEvent) isEvent()           {}

// Entry is one element of the merged view, tagged with its kind
type Entry struct {
	Kind    Kind          `json:"kind"`
	APICall *APICallEvent `json:"apiCall,omitempty"`
	TestRun *TestRunEvent `json:"testRun,omitempty"`
}

// Event returns the wrapped event
func (en Entry) Event() Event {
	if en.APICall != nil {
		return *en.APICall
	}
	return *en.TestRun
}
