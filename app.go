package main

import (
	"context"
	"net/http"
	"time"

	"restui/internal/binding"
	"restui/internal/config"
	"restui/internal/eventlog"
	"restui/internal/logger"
	"restui/internal/replay"
	"restui/internal/store"
)

// App struct
type App struct {
	ctx            context.Context
	cfg            *config.Config
	log            logger.Logger
	store          *store.Store
	events         *eventlog.Aggregator
	runner         *replay.Runner
	changes        *binding.ChangeForwarder
	historyBinding *binding.HistoryBinding
	logBinding     *binding.LogBinding
	replayBinding  *binding.ReplayBinding
}

// NewApp wires the store, event log and replay runner from cfg
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	st, err := store.FromConfig(cfg.Store, log)
	if err != nil {
		return nil, err
	}

	events := eventlog.New(
		eventlog.WithSilentMethods(cfg.EventLog.SilentMethods...),
		eventlog.WithLogger(log),
	)

	// Replayed requests show up in the API log as well as the test log.
	client := &http.Client{
		Timeout:   time.Duration(cfg.Replay.TimeoutMS) * time.Millisecond,
		Transport: &eventlog.RecordingTransport{Recorder: events},
	}
	runner := replay.NewRunner(client, events, log)

	return &App{
		cfg:            cfg,
		log:            log,
		store:          st,
		events:         events,
		runner:         runner,
		changes:        binding.NewChangeForwarder(st),
		historyBinding: binding.NewHistoryBinding(st, log),
		logBinding:     binding.NewLogBinding(events, log),
		replayBinding:  binding.NewReplayBinding(st, runner, events, cfg.Replay.BaseURL, log),
	}, nil
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.changes.SetEmitter(eventlog.NewWailsEventEmitter(ctx))
	a.historyBinding.SetContext(ctx)
	a.logBinding.SetContext(ctx)
	a.replayBinding.SetContext(ctx)
	a.log.Info("Started", "driver", a.cfg.Store.Driver, "key", a.store.Key())
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	if a.runner.IsRunning() {
		if err := a.runner.Stop(); err != nil {
			a.log.Warn("Failed to stop replay", "error", err)
		}
	}
	a.changes.Close()

	if err := a.store.Close(); err != nil {
		a.log.Error("Failed to close store", "error", err)
	}
}

// bindings lists the structs exposed to the frontend
func (a *App) bindings() []interface{} {
	return []interface{}{
		a.historyBinding,
		a.logBinding,
		a.replayBinding,
	}
}
