package pipelines

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/project"
	"github.com/codescan-dev/codescan/internal/vuln"
)

// findVulnerabilities matches the packages already discovered for a
// project against a local advisory directory. It runs after an inventory
// pipeline such as inspect_codebase or analyze_docker_image.
type findVulnerabilities struct {
	proj  *project.Project
	cfg   *config.Config
	decl  pipeline.Declaration
	steps []pipeline.Step

	// advisories is set by load_advisories and consumed by match_packages.
	advisories []model.Advisory
}

func vulnerabilitiesDeclaration() pipeline.Declaration {
	return pipeline.Declaration{
		Name:        "find_vulnerabilities",
		Description: "Match discovered packages against local security advisories",
		Steps: []pipeline.StepSpec{
			{Name: "load_advisories", Description: "Read advisory documents from the advisory directory"},
			{Name: "match_packages", Description: "Record a finding for every package an advisory affects"},
			{Name: "fail_on_findings", Description: "Fail the run when the project has any findings",
				Optional: true},
		},
	}
}

// NewFindVulnerabilities builds the find_vulnerabilities pipeline over a
// project.
func NewFindVulnerabilities(proj *project.Project, cfg *config.Config) (pipeline.Pipeline, error) {
	p := &findVulnerabilities{proj: proj, cfg: cfg, decl: vulnerabilitiesDeclaration()}
	steps, err := pipeline.BindSteps(p.decl, map[string]pipeline.StepFunc{
		"load_advisories":  p.loadAdvisories,
		"match_packages":   p.matchPackages,
		"fail_on_findings": p.failOnFindings,
	})
	if err != nil {
		return nil, err
	}
	p.steps = steps
	return p, nil
}

func (p *findVulnerabilities) Declaration() pipeline.Declaration { return p.decl }

func (p *findVulnerabilities) Steps() []pipeline.Step { return p.steps }

// advisoryDir picks the advisory source: an explicitly configured
// directory wins, then the workspace advisories directory when it exists,
// then the project inputs.
func (p *findVulnerabilities) advisoryDir() string {
	if p.cfg.AdvisoryDir != "" {
		return p.cfg.AdvisoryDir
	}
	shared := filepath.Join(p.cfg.WorkspaceDir, "advisories")
	if info, err := os.Stat(shared); err == nil && info.IsDir() {
		return shared
	}
	return p.proj.InputDir()
}

func (p *findVulnerabilities) loadAdvisories(ctx context.Context) error {
	dir := p.advisoryDir()
	advisories, err := vuln.LoadAdvisories(dir)
	if err != nil {
		return err
	}
	p.advisories = advisories
	p.proj.Logger.Info("advisories loaded", "count", len(advisories), "dir", dir)
	return nil
}

func (p *findVulnerabilities) matchPackages(ctx context.Context) error {
	packages, err := p.proj.DB.ListPackages(ctx, p.proj.Meta.ID)
	if err != nil {
		return err
	}

	findings := vuln.Match(p.advisories, packages)
	for i := range findings {
		if err := p.proj.DB.InsertFinding(ctx, &findings[i]); err != nil {
			return err
		}
	}

	p.proj.Logger.Info("packages matched",
		"packages", len(packages), "advisories", len(p.advisories), "findings", len(findings))
	return nil
}

func (p *findVulnerabilities) failOnFindings(ctx context.Context) error {
	findings, err := p.proj.DB.ListFindings(ctx, p.proj.Meta.ID)
	if err != nil {
		return err
	}
	if len(findings) > 0 {
		return fmt.Errorf("project %s has %d vulnerability findings", p.proj.Meta.Name, len(findings))
	}
	return nil
}
