// Package replay re-issues the recorded path of a saved transaction and
// reports each lifecycle point to the test log.
package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"restui/internal/eventlog"
	"restui/internal/logger"
	"restui/internal/transaction"
)

const (
	ColorRunning   = "#2196f3"
	ColorCompleted = "#4caf50"
	ColorFailed    = "#f44336"

	stopTimeout = 10 * time.Second
)

var (
	ErrAlreadyRunning = errors.New("replay already running")
	ErrNotRunning     = errors.New("no running replay")
	ErrStepFailed     = errors.New("replay step failed")
)

// Doer sends HTTP requests
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder receives test lifecycle events
type Recorder interface {
	RecordTestEvent(scenarioID, scenarioRunID, content string, status eventlog.RunStatus, color string, details *eventlog.TestDetails) eventlog.TestRunEvent
}

// StepResult is the outcome of one replayed path row
type StepResult struct {
	Row    transaction.PathRow `json:"row"`
	Status int                 `json:"status"`
	Passed bool                `json:"passed"`
	Error  string              `json:"error,omitempty"`
}

// Result summarises one run
type Result struct {
	RunID  string       `json:"runId"`
	Steps  []StepResult `json:"steps"`
	Passed bool         `json:"passed"`
}

// Runner replays transactions one at a time
type Runner struct {
	doer     Doer
	recorder Recorder
	log      logger.Logger
	tracer   trace.Tracer

	mu         sync.Mutex
	running    bool
	runID      string
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewRunner creates a Runner sending requests through doer
func NewRunner(doer Doer, recorder Recorder, log logger.Logger) *Runner {
	if doer == nil {
		doer = http.DefaultClient
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		doer:     doer,
		recorder: recorder,
		log:      log.With("component", "replay"),
		tracer:   otel.Tracer("restui/replay"),
	}
}

// Run replays every path row of snap against baseURL in order and stops at
// the first failing row.
func (r *Runner) Run(ctx context.Context, snap transaction.Snapshot, baseURL string) (*Result, error) {
	return r.run(ctx, uuid.NewString(), snap, baseURL)
}

func (r *Runner) run(ctx context.Context, runID string, snap transaction.Snapshot, baseURL string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "replay.run", trace.WithAttributes(
		attribute.String("transaction.id", snap.ID),
		attribute.String("run.id", runID),
	))
	defer span.End()

	rows := transaction.ReconstructPaths(&snap)
	res := &Result{RunID: runID, Steps: make([]StepResult, 0, len(rows))}

	r.log.Info("Replay started", "transactionId", snap.ID, "runId", runID, "steps", len(rows))
	r.report(snap.ID, runID, fmt.Sprintf("Replaying %s (%d step(s))", snap.ID, len(rows)), eventlog.RunRunning, ColorRunning, nil)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			r.report(snap.ID, runID, "Replay stopped", eventlog.RunFailed, ColorFailed, &eventlog.TestDetails{Error: err.Error()})
			span.SetStatus(codes.Error, "stopped")
			return res, err
		}

		step := r.step(ctx, snap, row, baseURL, i == len(rows)-1)
		res.Steps = append(res.Steps, step)

		content := fmt.Sprintf("Step %d/%d: %s %s -> %s", i+1, len(rows), row.Method, row.Path, statusText(step))
		if !step.Passed {
			details := failureDetails(snap, step, i == len(rows)-1)
			r.report(snap.ID, runID, content, eventlog.RunFailed, ColorFailed, details)
			r.log.Warn("Replay failed", "transactionId", snap.ID, "runId", runID, "step", i+1, "error", step.Error)
			span.SetStatus(codes.Error, step.Error)
			return res, fmt.Errorf("%w: step %d: %s", ErrStepFailed, i+1, step.Error)
		}
		r.report(snap.ID, runID, content, eventlog.RunRunning, ColorRunning, nil)
	}

	res.Passed = true
	r.report(snap.ID, runID, fmt.Sprintf("Replay of %s completed", snap.ID), eventlog.RunCompleted, ColorCompleted, nil)
	r.log.Info("Replay completed", "transactionId", snap.ID, "runId", runID)
	span.SetStatus(codes.Ok, "")
	return res, nil
}

func (r *Runner) step(ctx context.Context, snap transaction.Snapshot, row transaction.PathRow, baseURL string, last bool) StepResult {
	ctx, span := r.tracer.Start(ctx, "replay.step", trace.WithAttributes(
		attribute.String("row.id", row.ID),
		attribute.String("http.method", row.Method),
		attribute.String("http.path", row.Path),
	))
	defer span.End()

	out := StepResult{Row: row}

	req, err := buildRequest(ctx, snap, row, baseURL)
	if err != nil {
		out.Error = err.Error()
		span.RecordError(err)
		return out
	}

	resp, err := r.doer.Do(req)
	if err != nil {
		out.Error = err.Error()
		span.RecordError(err)
		return out
	}
	resp.Body.Close()

	out.Status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	want := recordedStatus(snap, last)
	switch {
	case want != 0 && want != resp.StatusCode:
		out.Error = fmt.Sprintf("expected status %d, got %d", want, resp.StatusCode)
	case want == 0 && resp.StatusCode >= 400:
		out.Error = "unexpected status " + strconv.Itoa(resp.StatusCode)
	default:
		out.Passed = true
	}
	if !out.Passed {
		span.SetStatus(codes.Error, out.Error)
	}
	return out
}

func (r *Runner) report(scenarioID, runID, content string, status eventlog.RunStatus, color string, details *eventlog.TestDetails) {
	if r.recorder != nil {
		r.recorder.RecordTestEvent(scenarioID, runID, content, status, color, details)
	}
}

func buildRequest(ctx context.Context, snap transaction.Snapshot, row transaction.PathRow, baseURL string) (*http.Request, error) {
	url := row.Path
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(row.Path, "/")
	}

	var body *bytes.Reader
	if len(snap.Request.Body) > 0 && row.Method != http.MethodGet && row.Method != http.MethodHead {
		body = bytes.NewReader(snap.Request.Body)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, row.Method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, row.Method, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range snap.Request.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func statusText(step StepResult) string {
	if step.Status == 0 {
		return "error"
	}
	return strconv.Itoa(step.Status)
}

// recordedStatus is the status the final step must reproduce, 0 when any
// status below 400 passes.
func recordedStatus(snap transaction.Snapshot, last bool) int {
	if !last || snap.Response == nil {
		return 0
	}
	return snap.Response.Status
}

func failureDetails(snap transaction.Snapshot, step StepResult, last bool) *eventlog.TestDetails {
	d := &eventlog.TestDetails{Error: step.Error}
	if step.Status != 0 {
		d.Actual = strconv.Itoa(step.Status)
	}
	want := recordedStatus(snap, last)
	switch {
	case step.Status == 0:
		d.Suggestion = "Check that the target service is reachable"
	case want != 0:
		d.Expected = strconv.Itoa(want)
		d.Suggestion = "The recorded response status no longer matches"
	default:
		d.Expected = "< 400"
		d.Suggestion = fmt.Sprintf("Inspect %s %s on the target service", step.Row.Method, step.Row.Path)
	}
	return d
}

// Start replays snap in the background. Only one replay runs at a time.
func (r *Runner) Start(snap transaction.Snapshot, baseURL string) (string, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return "", ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	runID := uuid.NewString()
	r.running = true
	r.runID = runID
	r.cancelFunc = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer cancel()

		if _, err := r.run(ctx, runID, snap, baseURL); err != nil {
			r.log.Debug("Background replay ended with error", "runId", runID, "error", err)
		}

		r.mu.Lock()
		if r.runID == runID {
			r.running = false
			r.runID = ""
			r.cancelFunc = nil
		}
		r.mu.Unlock()
	}()

	return runID, nil
}

// Stop cancels the running replay and waits for it to finish
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	cancel := r.cancelFunc
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(stopTimeout):
		r.log.Warn("Stop timed out waiting for replay")
	}

	r.mu.Lock()
	r.running = false
	r.runID = ""
	r.cancelFunc = nil
	r.mu.Unlock()
	return nil
}

// IsRunning reports whether a background replay is active
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Wait blocks until the background replay, if any, has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}
