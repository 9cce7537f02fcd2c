package binding

import (
	"context"

	"restui/internal/eventlog"
	"restui/internal/logger"
	"restui/internal/replay"
	"restui/internal/scenario"
	"restui/internal/store"
)

// ReplayBinding provides frontend bindings for replaying saved transactions
type ReplayBinding struct {
	ctx     context.Context
	store   *store.Store
	runner  *replay.Runner
	agg     *eventlog.Aggregator
	baseURL string
	log     logger.Logger
}

// NewReplayBinding creates a new ReplayBinding instance
func NewReplayBinding(s *store.Store, runner *replay.Runner, agg *eventlog.Aggregator, baseURL string, log logger.Logger) *ReplayBinding {
	if log == nil {
		log = logger.NewNop()
	}
	return &ReplayBinding{
		store:   s,
		runner:  runner,
		agg:     agg,
		baseURL: baseURL,
		log:     log.With("binding", "replay"),
	}
}

// SetContext sets the Wails runtime context
func (r *ReplayBinding) SetContext(ctx context.Context) {
	r.ctx = ctx
}

// Replay starts replaying the saved transaction id and returns the run id
func (r *ReplayBinding) Replay(id string) (string, error) {
	snap, ok := r.store.Get(id)
	if !ok {
		return "", ErrTransactionNotFound
	}

	runID, err := r.runner.Start(snap, r.baseURL)
	if err != nil {
		r.log.Warn("Failed to start replay", "id", id, "error", err)
		return "", err
	}
	r.log.Info("Replay started", "id", id, "runId", runID)
	return runID, nil
}

// StopReplay cancels the running replay
func (r *ReplayBinding) StopReplay() error {
	return r.runner.Stop()
}

// IsReplaying reports whether a replay is running
func (r *ReplayBinding) IsReplaying() bool {
	return r.runner.IsRunning()
}

// GenerateScenarios builds test scenarios for a request
func (r *ReplayBinding) GenerateScenarios(cfg scenario.GeneratorConfig) ([]scenario.GeneratedScenario, error) {
	return scenario.Generate(cfg, r.agg)
}
