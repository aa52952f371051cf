package pipeline

import "time"

// State tracks where a run is in its lifecycle. Transitions are
// one-directional: not_started -> running -> one of the terminal states.
// No terminal state is ever left.
//
// Design decision: We use iota-based constants rather than string
// constants for efficiency in comparisons. The String() method provides
// the stable lowercase form used in logs and persisted run records.
type State int

const (
	// StateNotStarted is the initial state of a freshly constructed engine.
	StateNotStarted State = iota

	// StateRunning means Execute was entered and steps are in flight.
	StateRunning

	// StateSuccess means every selected step completed without error.
	StateSuccess

	// StateFailure means a step failed; later steps did not run.
	StateFailure

	// StateStopped means a cancellation signal was observed; the run ended
	// cleanly without being counted as a failure.
	StateStopped
)

// String returns the stable lowercase form of the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one of the three run-ending states.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure || s == StateStopped
}

// Exit codes carried by the Outcome. Process hosts map these directly to
// process exit codes, so stopped runs stay distinguishable from failures
// in shell pipelines and job schedulers.
const (
	// ExitSuccess means every selected step completed.
	ExitSuccess = 0

	// ExitFailure means a step failed and execution stopped there.
	ExitFailure = 1

	// ExitStopped is the sentinel for a cancelled run. It is deliberately
	// far from the common failure codes so callers never mistake an
	// operator stop for a crash.
	ExitStopped = 99
)

// Outcome is the terminal result of one pipeline execution. The engine
// creates it when execution starts, is its only writer, and finalizes it
// exactly once when the run reaches a terminal state.
type Outcome struct {
	// State is the terminal state of the run (success, failure, stopped).
	State State `json:"state"`

	// ExitCode is 0 on success, 1 on failure, ExitStopped when cancelled.
	ExitCode int `json:"exit_code"`

	// Error holds the failing step's message verbatim, or the cancellation
	// reason for stopped runs. Empty on success.
	Error string `json:"error,omitempty"`

	// ExecutedSteps lists the names of steps that ran to completion, in
	// execution order. A step that failed or was interrupted is not listed.
	ExecutedSteps []string `json:"executed_steps"`

	// Log is the ordered human-readable progress record of the run, the
	// same lines that were sent to the Recorder.
	Log []string `json:"log"`

	// StartedAt and EndedAt bound the run in wall-clock time.
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Duration returns the wall-clock time between run start and finalization.
func (o *Outcome) Duration() time.Duration {
	return o.EndedAt.Sub(o.StartedAt)
}

// Succeeded reports whether the run reached StateSuccess.
func (o *Outcome) Succeeded() bool {
	return o.State == StateSuccess
}
