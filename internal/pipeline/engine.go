package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Pipeline is a bound pipeline instance: a declaration plus step
// implementations closed over whatever external state the steps share
// (typically a project workspace handle). Instantiation performs no
// execution; it only wires steps to their state.
type Pipeline interface {
	// Declaration returns the pipeline type metadata. It must be constant
	// for the lifetime of the instance.
	Declaration() Declaration

	// Steps returns the bound steps. Names and order must match
	// Declaration().Steps exactly; the engine verifies this at
	// construction and refuses mismatched instances.
	Steps() []Step
}

// Engine executes the selected steps of one pipeline instance exactly
// once, strictly in order, with no concurrency of its own. Steps may use
// whatever internal parallelism they like; the engine only ever waits for
// the step to return.
//
// Design decision: One engine per run, never reused, because:
// 1. The run state machine is one-directional; reuse would hide stale state
// 2. Resumption is a fresh engine over the remaining steps, not a rewind
// 3. Guarding reuse at the API level turns subtle bugs into explicit errors
type Engine struct {
	pipeline  Pipeline
	selection Selection

	recorder      Recorder
	logger        *slog.Logger
	profile       bool
	stopRequested func() bool

	// selected is the resolution of the selection against the declaration,
	// bound to implementations; unknown holds explicitly requested names
	// that matched no declared step, reported as warnings at run start.
	selected []Step
	unknown  []string

	mu    sync.Mutex
	state State
}

// Option configures an Engine.
// This follows the functional options pattern for clean API design.
type Option func(*Engine)

// WithSelection narrows the run to the given groups or explicit steps.
// Without it, the engine runs every required step and no optional ones.
func WithSelection(sel Selection) Option {
	return func(e *Engine) {
		e.selection = sel
	}
}

// WithRecorder sets the sink that receives progress lines and step
// results. The engine wraps it so a panicking recorder cannot abort the
// run. Defaults to NopRecorder.
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		if rec != nil {
			e.recorder = rec
		}
	}
}

// WithLogger sets a custom logger for the engine.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables per-step wall-clock and allocation measurement.
// The flag applies uniformly to every step of the run.
func WithProfiling(enabled bool) Option {
	return func(e *Engine) {
		e.profile = enabled
	}
}

// WithStopCheck injects the cooperative cancellation predicate. The engine
// polls it at every step boundary; when it reports true, the in-flight
// step finishes, no new step starts, and the run finalizes as stopped.
// Hosts back it with whatever transport they have, e.g. a persisted
// stop flag polled from the database.
func WithStopCheck(fn func() bool) Option {
	return func(e *Engine) {
		if fn != nil {
			e.stopRequested = fn
		}
	}
}

// NewEngine binds an engine to a pipeline instance and resolves its step
// selection. It validates the declaration and checks that the bound steps
// line up with it; a mismatch is a programming error in the pipeline
// definition, reported immediately rather than surfacing mid-run.
func NewEngine(p Pipeline, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, ErrNilPipeline
	}

	e := &Engine{
		pipeline: p,
		state:    StateNotStarted,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.recorder == nil {
		e.recorder = NopRecorder{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.stopRequested == nil {
		e.stopRequested = func() bool { return false }
	}

	decl := p.Declaration()
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	steps := p.Steps()
	if len(steps) != len(decl.Steps) {
		return nil, fmt.Errorf("%w: pipeline %q declares %d steps but binds %d",
			ErrStepMismatch, decl.Name, len(decl.Steps), len(steps))
	}
	byName := make(map[string]Step, len(steps))
	for i, step := range steps {
		if step.Name != decl.Steps[i].Name {
			return nil, fmt.Errorf("%w: pipeline %q binds %q at position %d, declaration says %q",
				ErrStepMismatch, decl.Name, step.Name, i, decl.Steps[i].Name)
		}
		if step.Run == nil {
			return nil, fmt.Errorf("%w: pipeline %q step %q has no implementation",
				ErrStepMismatch, decl.Name, step.Name)
		}
		byName[step.Name] = step
	}

	specs, unknown := decl.Select(e.selection)
	e.selected = make([]Step, 0, len(specs))
	for _, spec := range specs {
		e.selected = append(e.selected, byName[spec.Name])
	}
	e.unknown = unknown

	// Recorder failures must never become engine failures.
	e.recorder = safeRecorder{r: e.recorder, logger: e.logger}

	return e, nil
}

// State reports the engine's position in the run lifecycle.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SelectedSteps returns the names the engine will execute, in order.
// Hosts use it to persist the planned step list before starting the run.
func (e *Engine) SelectedSteps() []string {
	names := make([]string, len(e.selected))
	for i, step := range e.selected {
		names[i] = step.Name
	}
	return names
}

// Execute runs the selected steps in order and returns the terminal
// Outcome. Step failures, panics inside steps, and cancellation are all
// classified into the Outcome; Execute never returns an error for them.
// The error return is reserved for engine misuse, currently only calling
// Execute again after a run (ErrAlreadyExecuted).
func (e *Engine) Execute(ctx context.Context) (*Outcome, error) {
	e.mu.Lock()
	if e.state != StateNotStarted {
		state := e.state
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: engine state is %s", ErrAlreadyExecuted, state)
	}
	e.state = StateRunning
	e.mu.Unlock()

	out := &Outcome{
		State:         StateRunning,
		ExecutedSteps: make([]string, 0, len(e.selected)),
		StartedAt:     time.Now(),
	}

	name := e.pipeline.Declaration().Name
	total := len(e.selected)

	e.logger.Info("pipeline starting", "pipeline", name, "steps", total, "profile", e.profile)
	e.emit(out, fmt.Sprintf("Pipeline [%s] starting (%d steps)", name, total))
	for _, missing := range e.unknown {
		e.logger.Warn("selected step not declared, dropped", "pipeline", name, "step", missing)
		e.emit(out, fmt.Sprintf("Warning: selected step %q is not declared by pipeline [%s], dropped", missing, name))
	}

	for i, step := range e.selected {
		if reason, stopped := e.stopObserved(ctx); stopped {
			e.logger.Warn("pipeline stopped", "pipeline", name, "before_step", step.Name, "reason", reason)
			e.emit(out, fmt.Sprintf("Pipeline [%s] stopped before step [%d/%d] %s: %s", name, i+1, total, step.Name, reason))
			return e.finalize(out, StateStopped, ExitStopped, reason), nil
		}

		e.logger.Info("executing step", "pipeline", name, "step", step.Name, "index", i+1, "total", total)
		e.emit(out, fmt.Sprintf("Step [%d/%d] %s", i+1, total, step.Name))

		start := time.Now()
		err := e.runStep(ctx, step)
		elapsed := time.Since(start)
		e.recorder.RecordStepResult(step.Name, err == nil, elapsed)

		if err != nil {
			if interrupted(ctx, err) {
				e.logger.Warn("step interrupted", "pipeline", name, "step", step.Name, "reason", err)
				e.emit(out, fmt.Sprintf("Step [%d/%d] %s interrupted after %s", i+1, total, step.Name, elapsed.Round(time.Millisecond)))
				return e.finalize(out, StateStopped, ExitStopped, err.Error()), nil
			}
			e.logger.Error("step failed", "pipeline", name, "step", step.Name, "elapsed", elapsed, "error", err)
			e.emit(out, fmt.Sprintf("Step [%d/%d] %s failed after %s: %v", i+1, total, step.Name, elapsed.Round(time.Millisecond), err))
			return e.finalize(out, StateFailure, ExitFailure, err.Error()), nil
		}

		out.ExecutedSteps = append(out.ExecutedSteps, step.Name)
		e.emit(out, fmt.Sprintf("Step [%d/%d] %s completed in %s", i+1, total, step.Name, elapsed.Round(time.Millisecond)))
	}

	elapsed := time.Since(out.StartedAt)
	e.logger.Info("pipeline completed", "pipeline", name, "steps", total, "elapsed", elapsed)
	e.emit(out, fmt.Sprintf("Pipeline [%s] completed in %s", name, elapsed.Round(time.Millisecond)))
	return e.finalize(out, StateSuccess, ExitSuccess, ""), nil
}

// runStep invokes one step with panic containment. A panicking step is an
// unexpected failure: the recovered value and stack become the step error
// so operators get a full diagnostic in the run record.
func (e *Engine) runStep(ctx context.Context, step Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("step %s panicked: %v\n%s", step.Name, p, debug.Stack())
		}
	}()

	run := step.Run
	if e.profile {
		run = profileStep(step.StepSpec, run, e.recorder)
	}
	return run(ctx)
}

// stopObserved checks both cancellation sources consulted at step
// boundaries: the run context and the injected stop predicate.
func (e *Engine) stopObserved(ctx context.Context) (string, bool) {
	if err := ctx.Err(); err != nil {
		return err.Error(), true
	}
	if e.stopRequested() {
		return "stop requested", true
	}
	return "", false
}

// interrupted reports whether a step error is really the run's own
// cancellation surfacing through a cooperative step. Only errors matching
// the context's state qualify; a step fabricating context.Canceled while
// the run context is live is still a plain failure.
func interrupted(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// emit records one progress line in the outcome and forwards it to the
// recorder.
func (e *Engine) emit(out *Outcome, line string) {
	out.Log = append(out.Log, line)
	e.recorder.AppendLog(line)
}

// finalize moves the engine to its terminal state and seals the outcome.
func (e *Engine) finalize(out *Outcome, state State, exitCode int, errMsg string) *Outcome {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()

	out.State = state
	out.ExitCode = exitCode
	out.Error = errMsg
	out.EndedAt = time.Now()
	return out
}
