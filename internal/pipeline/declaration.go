package pipeline

import (
	"fmt"
	"sort"
)

// Declaration describes a pipeline type: its registry name, a description
// for listings, and the ordered steps it is made of. A declaration answers
// every pre-execution metadata question without constructing a pipeline
// instance, which is what CLI listings and selection validation run on.
//
// Design decision: Step metadata lives in an explicit ordered slice built
// at package initialization rather than being derived from method names via
// reflection. The declaration is plain data: cheap to inspect, trivially
// testable, and independent of how implementations are attached later.
type Declaration struct {
	// Name is the stable identifier used for registration and run records.
	Name string `json:"name"`

	// Description is a one-line summary shown by pipeline listings.
	Description string `json:"description,omitempty"`

	// Steps are the declared steps in execution order.
	Steps []StepSpec `json:"steps"`
}

// Validate checks the declaration for structural mistakes: an empty
// pipeline name, an unnamed step, or duplicate step names. A valid
// declaration with zero steps is legal (it declares a no-op pipeline).
func (d Declaration) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: pipeline name is empty", ErrInvalidDeclaration)
	}

	seen := make(map[string]bool, len(d.Steps))
	for i, spec := range d.Steps {
		if spec.Name == "" {
			return fmt.Errorf("%w: pipeline %q step %d has no name", ErrInvalidDeclaration, d.Name, i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("%w: pipeline %q declares step %q twice", ErrInvalidDeclaration, d.Name, spec.Name)
		}
		seen[spec.Name] = true
	}
	return nil
}

// StepNames returns all declared step names in execution order.
func (d Declaration) StepNames() []string {
	names := make([]string, len(d.Steps))
	for i, spec := range d.Steps {
		names[i] = spec.Name
	}
	return names
}

// OptionalStepNames returns the names of optional steps in declared order.
func (d Declaration) OptionalStepNames() []string {
	names := make([]string, 0)
	for _, spec := range d.Steps {
		if spec.Optional {
			names = append(names, spec.Name)
		}
	}
	return names
}

// Groups returns every group label used by the declaration, sorted so
// repeated queries produce identical output.
func (d Declaration) Groups() []string {
	seen := make(map[string]bool)
	groups := make([]string, 0)
	for _, spec := range d.Steps {
		for _, g := range spec.Groups {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	sort.Strings(groups)
	return groups
}

// StepsByGroup maps each group label to the names of the steps carrying
// it, preserving declared step order within each group.
func (d Declaration) StepsByGroup() map[string][]string {
	byGroup := make(map[string][]string)
	for _, spec := range d.Steps {
		for _, g := range spec.Groups {
			byGroup[g] = append(byGroup[g], spec.Name)
		}
	}
	return byGroup
}

// Metadata is the pre-execution description of a pipeline type, shaped for
// listings and API responses.
type Metadata struct {
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Steps         []string            `json:"steps"`
	OptionalSteps []string            `json:"optional_steps"`
	Groups        []string            `json:"groups"`
	StepsByGroup  map[string][]string `json:"steps_by_group"`
}

// Metadata assembles the full pre-execution view of the declaration.
// It is a pure query: no side effects, no pipeline instantiation, and
// identical results on every call.
func (d Declaration) Metadata() Metadata {
	return Metadata{
		Name:          d.Name,
		Description:   d.Description,
		Steps:         d.StepNames(),
		OptionalSteps: d.OptionalStepNames(),
		Groups:        d.Groups(),
		StepsByGroup:  d.StepsByGroup(),
	}
}
