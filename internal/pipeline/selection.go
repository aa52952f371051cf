package pipeline

// Selection narrows one run of a pipeline to the behavior the host wants.
// The zero value selects the default behavior: every required step, no
// optional ones.
//
// Selections are treated as immutable values; the engine never modifies
// the slices it is handed.
type Selection struct {
	// Groups activates every optional step tagged with at least one of
	// these labels. Groups are ignored when Steps is non-empty.
	Groups []string `json:"groups,omitempty"`

	// Steps, when non-empty, is the sole source of truth for the run: only
	// declared steps named here execute, in declared order, regardless of
	// optional flags and groups. Hosts use this for resumption and for
	// running manual-only steps.
	Steps []string `json:"steps,omitempty"`
}

// Select resolves the ordered list of steps to execute for this
// declaration under the given selection.
//
// With an explicit step list, declared steps whose name appears in the
// list are kept in declared order; names that match no declared step are
// returned in unknown so the caller can warn about them. Selection itself
// never fails. Without an explicit list, every required step is kept along
// with the optional steps whose groups intersect the selected groups.
//
// An empty result is legal and describes a no-op run.
func (d Declaration) Select(sel Selection) (steps []StepSpec, unknown []string) {
	steps = make([]StepSpec, 0, len(d.Steps))

	if len(sel.Steps) > 0 {
		wanted := make(map[string]bool, len(sel.Steps))
		for _, name := range sel.Steps {
			wanted[name] = true
		}

		declared := make(map[string]bool, len(d.Steps))
		for _, spec := range d.Steps {
			declared[spec.Name] = true
			if wanted[spec.Name] {
				steps = append(steps, spec)
			}
		}

		reported := make(map[string]bool)
		for _, name := range sel.Steps {
			if !declared[name] && !reported[name] {
				reported[name] = true
				unknown = append(unknown, name)
			}
		}
		return steps, unknown
	}

	selected := make(map[string]bool, len(sel.Groups))
	for _, g := range sel.Groups {
		selected[g] = true
	}

	for _, spec := range d.Steps {
		if !spec.Optional {
			steps = append(steps, spec)
			continue
		}
		// Optional without a group never runs through group selection.
		for _, g := range spec.Groups {
			if selected[g] {
				steps = append(steps, spec)
				break
			}
		}
	}
	return steps, nil
}
