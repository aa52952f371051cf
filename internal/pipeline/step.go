package pipeline

import (
	"context"
	"fmt"
)

// StepFunc is the unit of work bound to a single pipeline step.
// A step receives only a context; everything else it reads or writes goes
// through the pipeline instance that bound it (typically a project
// workspace handle), never through package-level state.
//
// Returning a non-nil error stops the run at this step. Errors should be
// user-meaningful: the engine copies the message verbatim into the
// Outcome without rewording it.
type StepFunc func(ctx context.Context) error

// StepSpec describes one step of a pipeline declaration: its stable name,
// a human-readable description, and the selection metadata that decides
// whether the step runs by default.
//
// Specs are declared once per pipeline type and never change at runtime.
// Declared order is execution order.
type StepSpec struct {
	// Name identifies the step within its pipeline. Names are unique per
	// declaration and are the handles used for explicit step selection,
	// logging, and resumption.
	Name string `json:"name"`

	// Description is a one-line summary shown by metadata listings.
	Description string `json:"description,omitempty"`

	// Optional marks a step that is skipped unless one of its groups is
	// selected or the step is named explicitly. An optional step with no
	// groups can only ever run through explicit selection.
	Optional bool `json:"optional,omitempty"`

	// Groups are the labels that bundle optional steps together so a host
	// can enable them as a unit. Groups have no effect on required steps.
	Groups []string `json:"groups,omitempty"`
}

// InGroup reports whether the spec carries the given group label.
func (s StepSpec) InGroup(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Step pairs a declared spec with its bound implementation.
type Step struct {
	StepSpec

	// Run is the step implementation. It must be non-nil on every step
	// handed to an engine.
	Run StepFunc
}

// BindSteps pairs a declaration's specs with implementations by name,
// returning bound steps in declared order. Every declared step needs an
// implementation and every implementation needs a declared step; anything
// else is a programming error reported as ErrStepMismatch.
func BindSteps(decl Declaration, impls map[string]StepFunc) ([]Step, error) {
	if len(impls) != len(decl.Steps) {
		return nil, fmt.Errorf("%w: pipeline %q declares %d steps but binds %d implementations",
			ErrStepMismatch, decl.Name, len(decl.Steps), len(impls))
	}

	steps := make([]Step, 0, len(decl.Steps))
	for _, spec := range decl.Steps {
		fn, ok := impls[spec.Name]
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: pipeline %q has no implementation for step %q",
				ErrStepMismatch, decl.Name, spec.Name)
		}
		steps = append(steps, Step{StepSpec: spec, Run: fn})
	}
	return steps, nil
}
