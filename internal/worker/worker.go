// Package worker executes pipeline runs. ExecuteRun drives a single run to
// its terminal status and is shared by the CLI's synchronous path and the
// Worker, which polls the workspace queue and executes claimed runs on a
// bounded pool.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/database"
	"github.com/codescan-dev/codescan/internal/log"
	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/project"
)

// ExecuteRun drives one run to a terminal status: it opens the project,
// builds the pipeline instance, executes the selected steps, and finalizes
// the run row. Setup failures (unknown pipeline, missing project) finalize
// the run as failed so a broken run never clogs the queue.
func ExecuteRun(ctx context.Context, ws *database.Workspace, workspaceDir string, reg *pipeline.Registry, run *model.Run, logger *slog.Logger) (*pipeline.Outcome, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("run", run.ID), slog.String("pipeline", run.Pipeline))

	engine, err := prepareEngine(ctx, ws, workspaceDir, reg, run, logger)
	if err != nil {
		if ferr := ws.FinalizeRun(ctx, run.ID, model.RunFailure, pipeline.ExitFailure, err.Error(), nil); ferr != nil {
			logger.Error("failed to finalize unrunnable run", "error", ferr)
		}
		return nil, err
	}

	// Runs claimed from the queue are already marked running.
	if run.Status != model.RunRunning {
		if err := ws.MarkRunStarted(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	logger.Info("run starting", "steps", engine.SelectedSteps())

	out, err := engine.Execute(ctx)
	if err != nil {
		return nil, err
	}

	status := runStatus(out.State)
	if err := ws.FinalizeRun(ctx, run.ID, status, out.ExitCode, out.Error, out.ExecutedSteps); err != nil {
		return nil, err
	}

	logger.Info("run finalized",
		"status", status.String(), "steps", len(out.ExecutedSteps), "elapsed", out.Duration())
	return out, nil
}

// prepareEngine assembles the engine for a run: the project handle, the
// pipeline instance, the persisting recorder, and the stop flag poll.
// Step code receives a logger that mirrors warnings and errors into the
// run's persisted log, so diagnostics from inside a step survive with the
// execution record.
func prepareEngine(ctx context.Context, ws *database.Workspace, workspaceDir string, reg *pipeline.Registry, run *model.Run, logger *slog.Logger) (*pipeline.Engine, error) {
	meta, err := ws.GetProject(ctx, run.ProjectID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("run %s references unknown project %s", run.ID, run.ProjectID)
	}

	recorder := database.NewRunRecorder(ws, run.ID, run.Pipeline, logger)
	stepLogger := slog.New(log.NewRunLogHandler(logger.Handler(), recorder, slog.LevelWarn))

	proj, err := project.Open(ctx, ws, workspaceDir, meta.Name, stepLogger)
	if err != nil {
		return nil, err
	}

	def, err := reg.Lookup(run.Pipeline)
	if err != nil {
		return nil, err
	}
	pipe, err := def.New(proj)
	if err != nil {
		return nil, err
	}

	stopCheck := func() bool {
		stopped, err := ws.StopRequested(context.Background(), run.ID)
		if err != nil {
			logger.Warn("failed to poll stop flag", "error", err)
			return false
		}
		return stopped
	}

	return pipeline.NewEngine(pipe,
		pipeline.WithSelection(pipeline.Selection{Groups: run.SelectedGroups, Steps: run.SelectedSteps}),
		pipeline.WithRecorder(recorder),
		pipeline.WithProfiling(run.Profile),
		pipeline.WithStopCheck(stopCheck),
		pipeline.WithLogger(logger),
	)
}

// runStatus maps a terminal engine state to the persisted run status.
func runStatus(state pipeline.State) model.RunStatus {
	switch state {
	case pipeline.StateSuccess:
		return model.RunSuccess
	case pipeline.StateStopped:
		return model.RunStopped
	default:
		return model.RunFailure
	}
}

// Worker polls the workspace queue and executes claimed runs.
type Worker struct {
	ws           *database.Workspace
	workspaceDir string
	registry     *pipeline.Registry
	concurrency  int
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option configures a Worker.
// This follows the functional options pattern for clean API design.
type Option func(*Worker)

// WithConcurrency bounds how many runs execute at once. Values below one
// fall back to the default.
func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithPollInterval sets how long the worker sleeps between queue polls.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithWorkerLogger sets a custom logger for the worker.
// If not set, slog.Default() is used.
func WithWorkerLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorker creates a worker over the given workspace and registry.
func NewWorker(ws *database.Workspace, workspaceDir string, reg *pipeline.Registry, opts ...Option) *Worker {
	w := &Worker{
		ws:           ws,
		workspaceDir: workspaceDir,
		registry:     reg,
		concurrency:  config.DefaultConcurrency,
		pollInterval: config.DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls the queue until ctx is cancelled, executing claimed runs on a
// pool of at most the configured concurrency. When every slot is busy the
// claim loop blocks, which also pauses claiming so queued runs stay
// available to other workers. Run returns after in-flight runs finish;
// they observe the cancellation at their next step boundary and finalize
// as stopped.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		"concurrency", w.concurrency, "poll_interval", w.pollInterval)

	var g errgroup.Group
	g.SetLimit(w.concurrency)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.claimRuns(ctx, &g)

		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping, waiting for in-flight runs")
			_ = g.Wait()
			w.logger.Info("worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// claimRuns drains the queue until it is empty, the context ends, or a
// poll fails. Each claimed run is handed to the pool.
func (w *Worker) claimRuns(ctx context.Context, g *errgroup.Group) {
	for ctx.Err() == nil {
		run, err := w.ws.ClaimQueuedRun(ctx)
		if err != nil {
			w.logger.Error("failed to poll run queue", "error", err)
			return
		}
		if run == nil {
			return
		}

		w.logger.Info("run claimed", "run", run.ID, "pipeline", run.Pipeline)
		g.Go(func() error {
			// Run failures land in the run row; only infrastructure errors
			// surface here, and they must not kill the other slots.
			if _, err := ExecuteRun(ctx, w.ws, w.workspaceDir, w.registry, run, w.logger); err != nil {
				w.logger.Error("run execution failed", "run", run.ID, "error", err)
			}
			return nil
		})
	}
}
