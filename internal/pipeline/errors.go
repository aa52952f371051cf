package pipeline

import "errors"

// Errors returned by engine construction, execution bookkeeping, and the
// pipeline registry. These describe programming or configuration mistakes,
// never step-level run failures; step failures are reported through the
// Outcome instead.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows callers to
// use errors.Is() for programmatic handling while the returned error still
// carries call-specific detail via fmt.Errorf wrapping.
var (
	// ErrNilPipeline is returned when an engine is constructed without a
	// pipeline instance.
	ErrNilPipeline = errors.New("pipeline is nil")

	// ErrAlreadyExecuted is returned when Execute is called on an engine
	// that already ran. One engine drives exactly one run; resumption means
	// constructing a fresh engine over the remaining steps.
	ErrAlreadyExecuted = errors.New("engine already executed: construct a new engine per run")

	// ErrStepMismatch is returned when the steps bound by a pipeline
	// instance do not line up with its declaration (missing implementation,
	// extra step, or different order).
	ErrStepMismatch = errors.New("bound steps do not match pipeline declaration")

	// ErrInvalidDeclaration is returned when a pipeline declaration is
	// malformed: empty pipeline name, unnamed step, or duplicate step names.
	ErrInvalidDeclaration = errors.New("invalid pipeline declaration")

	// ErrNotRegistered is returned when a registry lookup by name finds no
	// pipeline definition.
	ErrNotRegistered = errors.New("pipeline not registered")

	// ErrAlreadyRegistered is returned when a definition is registered
	// under a name that is already taken.
	ErrAlreadyRegistered = errors.New("pipeline already registered")
)
