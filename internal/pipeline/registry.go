package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codescan-dev/codescan/internal/project"
)

// Factory constructs a bound pipeline instance over a project workspace.
// Construction wires steps to the project handle and must not execute
// anything.
type Factory func(proj *project.Project) (Pipeline, error)

// Definition pairs a pipeline declaration with the factory that builds
// runnable instances of it. The declaration answers metadata queries;
// the factory is only invoked when a run is actually prepared.
type Definition struct {
	Declaration Declaration
	New         Factory
}

// Registry maps pipeline names to definitions. The hosting application
// populates it at process start; nothing is discovered implicitly.
//
// Design decision: Explicit registration instead of a plugin or entry
// point mechanism because:
// 1. The set of available pipelines is a deliberate, reviewable list
// 2. Tests can build private registries without global side effects
// 3. Lookup failures happen at request time with a clear error, not at
//    import time deep inside a loader
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition under its declaration name. The declaration
// must validate and the factory must be non-nil; registering the same
// name twice is an error.
func (r *Registry) Register(def Definition) error {
	if err := def.Declaration.Validate(); err != nil {
		return err
	}
	if def.New == nil {
		return fmt.Errorf("%w: pipeline %q has a nil factory", ErrInvalidDeclaration, def.Declaration.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	name := def.Declaration.Name
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	r.defs[name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return def, nil
}

// Names returns every registered pipeline name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns every registered definition, sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Declaration.Name < defs[j].Declaration.Name
	})
	return defs
}

// DefaultRegistry is the process-wide registry the CLI and worker use.
// The hosting application fills it at startup.
var DefaultRegistry = NewRegistry()

// Register adds a definition to the DefaultRegistry.
func Register(def Definition) error {
	return DefaultRegistry.Register(def)
}

// Lookup finds a definition in the DefaultRegistry.
func Lookup(name string) (Definition, error) {
	return DefaultRegistry.Lookup(name)
}

// Names lists the DefaultRegistry's pipeline names, sorted.
func Names() []string {
	return DefaultRegistry.Names()
}
