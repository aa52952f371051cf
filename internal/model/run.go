package model

import "time"

// RunStatus tracks a run through its persisted lifecycle. It mirrors the
// engine's run states and adds the pre-execution queue states owned by
// the hosting system.
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons, with String() providing the
// stable lowercase form stored in the database.
type RunStatus int

const (
	// RunNotStarted is a run that was created but neither queued nor
	// executed yet.
	RunNotStarted RunStatus = iota

	// RunQueued is a run waiting for a worker to pick it up.
	RunQueued

	// RunRunning is a run currently executing.
	RunRunning

	// RunSuccess is a run whose every selected step completed.
	RunSuccess

	// RunFailure is a run that stopped at a failing step.
	RunFailure

	// RunStopped is a run ended by a stop request, never counted as failed.
	RunStopped
)

// String returns the stable lowercase form of the status.
func (s RunStatus) String() string {
	switch s {
	case RunNotStarted:
		return "not_started"
	case RunQueued:
		return "queued"
	case RunRunning:
		return "running"
	case RunSuccess:
		return "success"
	case RunFailure:
		return "failure"
	case RunStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is one of the run-ending states.
func (s RunStatus) Terminal() bool {
	return s == RunSuccess || s == RunFailure || s == RunStopped
}

// ParseRunStatus converts the persisted string form back to a RunStatus.
// Unknown strings map to RunNotStarted so a corrupted row degrades to the
// most conservative state instead of failing the scan of a whole listing.
func ParseRunStatus(s string) RunStatus {
	switch s {
	case "queued":
		return RunQueued
	case "running":
		return RunRunning
	case "success":
		return RunSuccess
	case "failure":
		return RunFailure
	case "stopped":
		return RunStopped
	default:
		return RunNotStarted
	}
}

// Run is one execution attempt of a pipeline against a project. The row
// is created when the run is requested and updated as the engine reports
// progress; after finalization it is the durable execution record.
type Run struct {
	// ID is the run's UUID.
	ID string `json:"id"`

	// ProjectID is the owning project's UUID.
	ProjectID string `json:"project_id"`

	// Pipeline is the registered name of the pipeline type.
	Pipeline string `json:"pipeline"`

	// Status is the persisted lifecycle state.
	Status RunStatus `json:"status"`

	// ExitCode is the engine's exit code after finalization: 0 success,
	// 1 failure, the stop sentinel for cancelled runs.
	ExitCode int `json:"exit_code"`

	// Error holds the failing step's message verbatim, empty otherwise.
	Error string `json:"error,omitempty"`

	// ExecutedSteps are the step names that ran to completion, in order.
	ExecutedSteps []string `json:"executed_steps"`

	// SelectedGroups and SelectedSteps record the selection the run was
	// requested with, so a resumption can recompute the remaining steps.
	SelectedGroups []string `json:"selected_groups,omitempty"`
	SelectedSteps  []string `json:"selected_steps,omitempty"`

	// Profile records whether per-step profiling was enabled.
	Profile bool `json:"profile,omitempty"`

	// Log is the accumulated human-readable progress record.
	Log string `json:"log,omitempty"`

	// StopRequested is the persisted cooperative cancellation flag. The
	// executing engine polls it at step boundaries.
	StopRequested bool `json:"stop_requested,omitempty"`

	// CreatedAt is when the run was requested. StartedAt and EndedAt are
	// zero until the run starts and finalizes respectively.
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
}

// Duration returns the wall-clock execution time, or zero for runs that
// have not finalized.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
