package pipelines

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/project"
	"github.com/codescan-dev/codescan/internal/scan"
)

// inspectCodebase inventories a plain codebase: registered inputs are
// copied in, every file is recorded with size, digest and MIME type, and
// application manifests are parsed into packages and dependencies.
type inspectCodebase struct {
	proj  *project.Project
	cfg   *config.Config
	decl  pipeline.Declaration
	steps []pipeline.Step
}

func inspectDeclaration() pipeline.Declaration {
	return pipeline.Declaration{
		Name:        "inspect_codebase",
		Description: "Collect codebase resources and detect application packages",
		Steps: []pipeline.StepSpec{
			{Name: "collect_inputs", Description: "Copy registered input files into the codebase"},
			{Name: "collect_resources", Description: "Walk the codebase and record file metadata and digests"},
			{Name: "detect_packages", Description: "Parse application manifests into packages and dependencies"},
			{Name: "fingerprint_codebase", Description: "Write directory content fingerprints to the output directory",
				Optional: true, Groups: []string{"fingerprint"}},
		},
	}
}

// NewInspectCodebase builds the inspect_codebase pipeline over a project.
func NewInspectCodebase(proj *project.Project, cfg *config.Config) (pipeline.Pipeline, error) {
	p := &inspectCodebase{proj: proj, cfg: cfg, decl: inspectDeclaration()}
	steps, err := pipeline.BindSteps(p.decl, map[string]pipeline.StepFunc{
		"collect_inputs":       p.collectInputs,
		"collect_resources":    p.collectResources,
		"detect_packages":      p.detectPackages,
		"fingerprint_codebase": p.fingerprintCodebase,
	})
	if err != nil {
		return nil, err
	}
	p.steps = steps
	return p, nil
}

func (p *inspectCodebase) Declaration() pipeline.Declaration { return p.decl }

func (p *inspectCodebase) Steps() []pipeline.Step { return p.steps }

// collectInputs copies registered inputs into the codebase directory. A
// project whose codebase was populated directly has no inputs, which is
// fine.
func (p *inspectCodebase) collectInputs(ctx context.Context) error {
	inputs, err := p.proj.Inputs()
	if err != nil {
		return err
	}
	for _, src := range inputs {
		dst := filepath.Join(p.proj.CodebaseDir(), filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return err
		}
	}
	p.proj.Logger.Debug("inputs collected", "count", len(inputs))
	return nil
}

func (p *inspectCodebase) collectResources(ctx context.Context) error {
	_, err := collectResources(ctx, p.proj, p.cfg)
	return err
}

func (p *inspectCodebase) detectPackages(ctx context.Context) error {
	manifests, err := scan.DetectPackages(ctx, p.proj.CodebaseDir(), scan.DefaultDetectors(), p.proj.Logger)
	if err != nil {
		return err
	}
	return persistInventory(ctx, p.proj, manifests)
}

func (p *inspectCodebase) fingerprintCodebase(ctx context.Context) error {
	resources, err := p.proj.DB.ListResources(ctx, p.proj.Meta.ID)
	if err != nil {
		return err
	}

	fingerprints := scan.DirectoryFingerprints(resources)
	data, err := json.MarshalIndent(fingerprints, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode fingerprints: %w", err)
	}
	out := filepath.Join(p.proj.OutputDir(), "fingerprints.json")
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("failed to write fingerprints: %w", err)
	}

	p.proj.Logger.Info("fingerprints written", "file", out, "directories", len(fingerprints))
	return nil
}
