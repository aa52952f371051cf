package database

import (
	"context"
	"log/slog"
	"time"
)

// RunRecorder persists engine progress events onto a run row. It satisfies
// the engine's recorder contract without the engine knowing about storage.
//
// Design decision: Recording failures are logged and swallowed rather than
// returned because:
// 1. The run's outcome must never depend on bookkeeping writes
// 2. The engine's recorder contract has no error channel to report through
// 3. A lost log line is recoverable noise; a failed run is not
type RunRecorder struct {
	ws       *Workspace
	runID    string
	pipeline string
	logger   *slog.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewRunRecorder returns a recorder that appends progress to the given run.
func NewRunRecorder(ws *Workspace, runID, pipeline string, logger *slog.Logger) *RunRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRecorder{
		ws:       ws,
		runID:    runID,
		pipeline: pipeline,
		logger:   logger,
		now:      time.Now,
	}
}

// AppendLog stores one timestamped progress line on the run row.
func (r *RunRecorder) AppendLog(line string) {
	stamped := r.now().UTC().Format("2006-01-02 15:04:05") + " " + line
	if err := r.ws.AppendRunLog(context.Background(), r.runID, stamped); err != nil {
		r.logger.Warn("failed to persist run log line",
			slog.String("run_id", r.runID),
			slog.String("error", err.Error()))
	}
}

// RecordStepResult stores the timing row for one executed step.
func (r *RunRecorder) RecordStepResult(name string, succeeded bool, elapsed time.Duration) {
	if err := r.ws.RecordRunStep(context.Background(), r.runID, r.pipeline, name, succeeded, elapsed); err != nil {
		r.logger.Warn("failed to persist step result",
			slog.String("run_id", r.runID),
			slog.String("step", name),
			slog.String("error", err.Error()))
	}
}
