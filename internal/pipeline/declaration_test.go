package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// TestDeclarationValidate tests structural validation of declarations.
func TestDeclarationValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		decl    Declaration
		wantErr error
	}{
		{
			name: "valid declaration",
			decl: Declaration{
				Name:  "inspect_codebase",
				Steps: []StepSpec{{Name: "collect"}, {Name: "report"}},
			},
			wantErr: nil,
		},
		{
			name:    "valid with zero steps",
			decl:    Declaration{Name: "noop"},
			wantErr: nil,
		},
		{
			name:    "empty pipeline name",
			decl:    Declaration{Steps: []StepSpec{{Name: "collect"}}},
			wantErr: ErrInvalidDeclaration,
		},
		{
			name: "unnamed step",
			decl: Declaration{
				Name:  "inspect_codebase",
				Steps: []StepSpec{{Name: "collect"}, {Name: ""}},
			},
			wantErr: ErrInvalidDeclaration,
		},
		{
			name: "duplicate step names",
			decl: Declaration{
				Name:  "inspect_codebase",
				Steps: []StepSpec{{Name: "collect"}, {Name: "collect"}},
			},
			wantErr: ErrInvalidDeclaration,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.decl.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestDeclarationQueries tests the metadata accessors used by listings.
func TestDeclarationQueries(t *testing.T) {
	t.Parallel()

	decl := Declaration{
		Name:        "analyze_image",
		Description: "extract and inventory an image",
		Steps: []StepSpec{
			{Name: "extract"},
			{Name: "scan_dpkg", Optional: true, Groups: []string{"os", "debian"}},
			{Name: "scan_apk", Optional: true, Groups: []string{"os"}},
			{Name: "report"},
		},
	}

	t.Run("step names in declared order", func(t *testing.T) {
		t.Parallel()

		want := []string{"extract", "scan_dpkg", "scan_apk", "report"}
		if got := decl.StepNames(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("optional step names", func(t *testing.T) {
		t.Parallel()

		want := []string{"scan_dpkg", "scan_apk"}
		if got := decl.OptionalStepNames(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("groups are deduplicated and sorted", func(t *testing.T) {
		t.Parallel()

		want := []string{"debian", "os"}
		if got := decl.Groups(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("steps by group preserve declared order", func(t *testing.T) {
		t.Parallel()

		byGroup := decl.StepsByGroup()
		if got := byGroup["os"]; !reflect.DeepEqual(got, []string{"scan_dpkg", "scan_apk"}) {
			t.Errorf("expected os group [scan_dpkg scan_apk], got %v", got)
		}
		if got := byGroup["debian"]; !reflect.DeepEqual(got, []string{"scan_dpkg"}) {
			t.Errorf("expected debian group [scan_dpkg], got %v", got)
		}
	})

	t.Run("in group lookup", func(t *testing.T) {
		t.Parallel()

		spec := decl.Steps[1]
		if !spec.InGroup("debian") {
			t.Error("expected scan_dpkg to carry the debian group")
		}
		if spec.InGroup("java") {
			t.Error("expected scan_dpkg not to carry the java group")
		}
	})
}

// TestDeclarationMetadata tests that Metadata is a pure query with stable
// output.
func TestDeclarationMetadata(t *testing.T) {
	t.Parallel()

	decl := Declaration{
		Name:        "find_vulnerabilities",
		Description: "match packages against advisories",
		Steps: []StepSpec{
			{Name: "load_advisories"},
			{Name: "match"},
			{Name: "fail_on_findings", Optional: true},
		},
	}

	meta := decl.Metadata()

	if meta.Name != "find_vulnerabilities" {
		t.Errorf("expected name find_vulnerabilities, got %q", meta.Name)
	}
	if meta.Description != decl.Description {
		t.Errorf("expected description %q, got %q", decl.Description, meta.Description)
	}
	if !reflect.DeepEqual(meta.Steps, []string{"load_advisories", "match", "fail_on_findings"}) {
		t.Errorf("unexpected steps %v", meta.Steps)
	}
	if !reflect.DeepEqual(meta.OptionalSteps, []string{"fail_on_findings"}) {
		t.Errorf("unexpected optional steps %v", meta.OptionalSteps)
	}
	if len(meta.Groups) != 0 {
		t.Errorf("expected no groups, got %v", meta.Groups)
	}

	// Metadata must not depend on call history.
	if again := decl.Metadata(); !reflect.DeepEqual(meta, again) {
		t.Errorf("expected identical metadata on repeat call, got %+v then %+v", meta, again)
	}
}

// TestBindSteps tests the name-based pairing of declarations with
// implementations.
func TestBindSteps(t *testing.T) {
	t.Parallel()

	decl := Declaration{
		Name:  "inspect_codebase",
		Steps: []StepSpec{{Name: "collect"}, {Name: "report"}},
	}
	noop := func(context.Context) error { return nil }

	t.Run("binds in declared order", func(t *testing.T) {
		t.Parallel()

		steps, err := BindSteps(decl, map[string]StepFunc{
			"report":  noop,
			"collect": noop,
		})
		if err != nil {
			t.Fatalf("failed to bind: %v", err)
		}
		if len(steps) != 2 || steps[0].Name != "collect" || steps[1].Name != "report" {
			t.Errorf("expected declared order, got %v", steps)
		}
	})

	t.Run("missing implementation", func(t *testing.T) {
		t.Parallel()

		_, err := BindSteps(decl, map[string]StepFunc{
			"collect": noop,
			"cleanup": noop,
		})
		if !errors.Is(err, ErrStepMismatch) {
			t.Errorf("expected ErrStepMismatch, got %v", err)
		}
	})

	t.Run("implementation count mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := BindSteps(decl, map[string]StepFunc{
			"collect": noop,
		})
		if !errors.Is(err, ErrStepMismatch) {
			t.Errorf("expected ErrStepMismatch, got %v", err)
		}
	})

	t.Run("nil implementation", func(t *testing.T) {
		t.Parallel()

		_, err := BindSteps(decl, map[string]StepFunc{
			"collect": noop,
			"report":  nil,
		})
		if !errors.Is(err, ErrStepMismatch) {
			t.Errorf("expected ErrStepMismatch, got %v", err)
		}
	})
}
