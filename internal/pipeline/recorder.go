package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

// Recorder receives execution events from an engine so the hosting system
// can persist them. It is a pure side channel: the engine behaves
// identically against a no-op recorder, and nothing a recorder does (or
// fails to do) changes control flow.
//
// Implementations should not block for long; they are called inline from
// the executing goroutine between steps.
type Recorder interface {
	// AppendLog receives one human-readable progress line per notable
	// event: run start, step start/end, warnings, finalization.
	AppendLog(line string)

	// RecordStepResult is the structured counterpart to the log lines:
	// one call per attempted step with its outcome and wall-clock elapsed
	// time, in execution order.
	RecordStepResult(name string, succeeded bool, elapsed time.Duration)
}

// NopRecorder discards every event. It is the default when an engine is
// constructed without a recorder.
type NopRecorder struct{}

// AppendLog implements Recorder.
func (NopRecorder) AppendLog(string) {}

// RecordStepResult implements Recorder.
func (NopRecorder) RecordStepResult(string, bool, time.Duration) {}

// StepResult is one recorded step attempt, as captured by MemoryRecorder.
type StepResult struct {
	Name      string
	Succeeded bool
	Elapsed   time.Duration
}

// MemoryRecorder accumulates events in memory. It backs synchronous CLI
// runs (where the log is printed after the fact) and tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	lines   []string
	results []StepResult
}

// NewMemoryRecorder returns an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// AppendLog implements Recorder.
func (r *MemoryRecorder) AppendLog(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// RecordStepResult implements Recorder.
func (r *MemoryRecorder) RecordStepResult(name string, succeeded bool, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, StepResult{Name: name, Succeeded: succeeded, Elapsed: elapsed})
}

// Lines returns a copy of the recorded log lines in order.
func (r *MemoryRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, len(r.lines))
	copy(lines, r.lines)
	return lines
}

// Results returns a copy of the recorded step results in order.
func (r *MemoryRecorder) Results() []StepResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]StepResult, len(r.results))
	copy(results, r.results)
	return results
}

// safeRecorder shields the engine from a misbehaving recorder. A recorder
// that panics must not take the run down with it, so panics are absorbed
// and logged, and execution continues.
type safeRecorder struct {
	r      Recorder
	logger *slog.Logger
}

// AppendLog implements Recorder.
func (s safeRecorder) AppendLog(line string) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Warn("recorder panicked, event dropped", "op", "append_log", "panic", p)
		}
	}()
	s.r.AppendLog(line)
}

// RecordStepResult implements Recorder.
func (s safeRecorder) RecordStepResult(name string, succeeded bool, elapsed time.Duration) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Warn("recorder panicked, event dropped", "op", "record_step_result", "step", name, "panic", p)
		}
	}()
	s.r.RecordStepResult(name, succeeded, elapsed)
}
