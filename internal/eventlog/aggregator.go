package eventlog

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"restui/internal/logger"
)

const (
	// LogAPI and LogTest are the valid active-log indexes
	LogAPI  = 0
	LogTest = 1

	// MethodTestLog routes a collaborator call to the test log
	MethodTestLog = "TEST_LOG"
	// MethodGenerate is the default silent method
	MethodGenerate = "GENERATE"
)

var ErrInvalidLogIndex = errors.New("log index must be 0 or 1")

// State is the read contract exposed to the presenter.
// Both logs are newest first.
type State struct {
	APILogs     []APICallEvent `json:"apiLogs"`
	TestLogs    []TestRunEvent `json:"testLogs"`
	SelectedTab int            `json:"selectedTab"`
	Surfaced    bool           `json:"surfaced"`
}

// Aggregator holds the API and test logs plus the presenter state.
//
// API calls surface the presenter unless their method is silent; test events
// always surface it.
type Aggregator struct {
	mu       sync.Mutex
	apiLog   []APICallEvent // insertion order, reversed on read
	testLog  []TestRunEvent // insertion order, reversed on read
	active   int
	surfaced bool
	seq      uint64

	silent  []string
	now     func() time.Time
	emitter EventEmitter
	log     logger.Logger

	// emitMu orders emissions; emitted is the version last sent.
	emitMu  sync.Mutex
	version uint64
	emitted uint64
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSilentMethods replaces the set of methods that are logged without
// surfacing the presenter. Comparison is case-sensitive.
func WithSilentMethods(methods ...string) Option {
	return func(a *Aggregator) {
		a.silent = lo.Uniq(lo.Compact(methods))
	}
}

// WithEmitter sets the presenter notification sink
func WithEmitter(e EventEmitter) Option {
	return func(a *Aggregator) {
		if e != nil {
			a.emitter = e
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an empty Aggregator showing the API log, not surfaced
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		active:  LogAPI,
		silent:  []string{MethodGenerate},
		now:     time.Now,
		emitter: nopEmitter{},
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "eventlog")
	return a
}

// SetEmitter replaces the notification sink, e.g. once the Wails context exists
func (a *Aggregator) SetEmitter(e EventEmitter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e == nil {
		e = nopEmitter{}
	}
	a.emitter = e
}

// IsSilent reports whether method is logged without surfacing
func (a *Aggregator) IsSilent(method string) bool {
	return lo.Contains(a.silent, method)
}

// RecordAPICall logs a completed request. Unless method is silent the API
// log becomes active and the presenter surfaces.
func (a *Aggregator) RecordAPICall(method, url string, request, response json.RawMessage) APICallEvent {
	a.mu.Lock()
	a.seq++
	ev := APICallEvent{
		Method:    method,
		URL:       url,
		Request:   cloneRaw(request),
		Response:  cloneRaw(response),
		Timestamp: a.now(),
		Seq:       a.seq,
	}
	a.apiLog = append(a.apiLog, ev)
	silent := a.IsSilent(method)
	if !silent {
		a.active = LogAPI
		a.surfaced = true
	}
	a.version++
	a.mu.Unlock()

	a.log.Debug("Recorded API call", "method", method, "url", url, "status", ev.Status(), "silent", silent)
	a.notify()
	return ev
}

// RecordTestEvent logs a test lifecycle point. The test log always becomes
// active and the presenter always surfaces.
func (a *Aggregator) RecordTestEvent(scenarioID, scenarioRunID, content string, status RunStatus, color string, details *TestDetails) TestRunEvent {
	a.mu.Lock()
	a.seq++
	ev := TestRunEvent{
		ScenarioID:    scenarioID,
		ScenarioRunID: scenarioRunID,
		Content:       content,
		Status:        status,
		Color:         color,
		Details:       details,
		Timestamp:     a.now(),
		Seq:           a.seq,
	}
	a.testLog = append(a.testLog, ev)
	a.active = LogTest
	a.surfaced = true
	a.version++
	a.mu.Unlock()

	a.log.Debug("Recorded test event", "scenarioId", scenarioID, "runId", scenarioRunID, "status", status)
	a.notify()
	return ev
}

// Route accepts the generic collaborator call shape. TEST_LOG calls carry a
// test-log payload in request and go to the test log; everything else is an
// API call.
func (a *Aggregator) Route(method, url string, request, response json.RawMessage) Event {
	if method == MethodTestLog && gjson.GetBytes(request, "type").String() == "test-log" {
		var details *TestDetails
		if d := gjson.GetBytes(request, "details"); d.IsObject() {
			details = &TestDetails{
				Suggestion: d.Get("suggestion").String(),
				Expected:   d.Get("expected").String(),
				Actual:     d.Get("actual").String(),
				Error:      d.Get("error").String(),
			}
		}
		return a.RecordTestEvent(
			gjson.GetBytes(request, "scenarioId").String(),
			gjson.GetBytes(request, "scenarioRunId").String(),
			gjson.GetBytes(request, "content").String(),
			RunStatus(gjson.GetBytes(request, "status").String()),
			gjson.GetBytes(request, "color").String(),
			details,
		)
	}
	return a.RecordAPICall(method, url, request, response)
}

// ClearAll empties both logs. The active log and surfaced flag are kept.
func (a *Aggregator) ClearAll() {
	a.mu.Lock()
	a.apiLog = nil
	a.testLog = nil
	a.version++
	a.mu.Unlock()

	a.log.Info("Cleared event logs")
	a.notify()
}

// SetActiveLog switches the presenter tab
func (a *Aggregator) SetActiveLog(index int) error {
	if index != LogAPI && index != LogTest {
		return ErrInvalidLogIndex
	}
	a.mu.Lock()
	a.active = index
	a.version++
	a.mu.Unlock()

	a.notify()
	return nil
}

// SetSurfaced opens or closes the presenter
func (a *Aggregator) SetSurfaced(surfaced bool) {
	a.mu.Lock()
	a.surfaced = surfaced
	a.version++
	a.mu.Unlock()

	a.notify()
}

// ActiveLog returns the active log index
func (a *Aggregator) ActiveLog() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Surfaced reports whether the presenter should be visible
func (a *Aggregator) Surfaced() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.surfaced
}

// APILogs returns the API log newest first
func (a *Aggregator) APILogs() []APICallEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return newestFirst(a.apiLog)
}

// TestLogs returns the test log newest first
func (a *Aggregator) TestLogs() []TestRunEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return newestFirst(a.testLog)
}

// State returns a consistent copy of the read contract
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *Aggregator) stateLocked() State {
	return State{
		APILogs:     newestFirst(a.apiLog),
		TestLogs:    newestFirst(a.testLog),
		SelectedTab: a.active,
		Surfaced:    a.surfaced,
	}
}

// Merged interleaves both logs newest first. Equal timestamps are ordered by
// record sequence, later first.
func (a *Aggregator) Merged() []Entry {
	a.mu.Lock()
	entries := make([]Entry, 0, len(a.apiLog)+len(a.testLog))
	for i := range a.apiLog {
		ev := a.apiLog[i]
		entries = append(entries, Entry{Kind: KindAPICall, APICall: &ev})
	}
	for i := range a.testLog {
		ev := a.testLog[i]
		entries = append(entries, Entry{Kind: KindTestRun, TestRun: &ev})
	}
	a.mu.Unlock()

	slices.SortFunc(entries, func(x, y Entry) int {
		ex, ey := x.Event(), y.Event()
		if c := ey.Time().Compare(ex.Time()); c != 0 {
			return c
		}
		switch {
		case ex.Sequence() > ey.Sequence():
			return -1
		case ex.Sequence() < ey.Sequence():
			return 1
		}
		return 0
	})
	return entries
}

// notify sends the current state. The snapshot is taken while holding emitMu
// so the presenter always ends on the newest state. Emitters must not record
// into the aggregator.
func (a *Aggregator) notify() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if a.version == a.emitted {
		a.mu.Unlock()
		return
	}
	a.emitted = a.version
	st := a.stateLocked()
	emitter := a.emitter
	a.mu.Unlock()

	emitter.Emit(EventUpdated, map[string]any{
		"apiLogs":     st.APILogs,
		"testLogs":    st.TestLogs,
		"selectedTab": st.SelectedTab,
		"surfaced":    st.Surfaced,
	})
}

func newestFirst[T any](log []T) []T {
	out := make([]T, len(log))
	for i, ev := range log {
		out[len(log)-1-i] = ev
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
