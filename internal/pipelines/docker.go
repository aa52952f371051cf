package pipelines

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/docker"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/project"
	"github.com/codescan-dev/codescan/internal/scan"
)

// analyzeDockerImage unpacks a saved container image into the codebase
// directory, identifies the operating system, and inventories both OS and
// application packages found in the flattened filesystem.
type analyzeDockerImage struct {
	proj  *project.Project
	cfg   *config.Config
	decl  pipeline.Declaration
	steps []pipeline.Step

	// imagePath is set by locate_image and consumed by extract_image.
	imagePath string
}

func dockerDeclaration() pipeline.Declaration {
	return pipeline.Declaration{
		Name:        "analyze_docker_image",
		Description: "Extract a container image and inventory its OS and application packages",
		Steps: []pipeline.StepSpec{
			{Name: "locate_image", Description: "Find the image archive among the project inputs"},
			{Name: "extract_image", Description: "Apply the image layers into the codebase directory"},
			{Name: "detect_os", Description: "Identify the operating system from os-release"},
			{Name: "collect_resources", Description: "Walk the extracted filesystem and record file metadata"},
			{Name: "scan_dpkg", Description: "Inventory Debian packages from the dpkg status database",
				Optional: true, Groups: []string{"os"}},
			{Name: "scan_apk", Description: "Inventory Alpine packages from the apk installed database",
				Optional: true, Groups: []string{"os"}},
			{Name: "detect_app_packages", Description: "Parse application manifests baked into the image"},
		},
	}
}

// NewAnalyzeDockerImage builds the analyze_docker_image pipeline over a
// project.
func NewAnalyzeDockerImage(proj *project.Project, cfg *config.Config) (pipeline.Pipeline, error) {
	p := &analyzeDockerImage{proj: proj, cfg: cfg, decl: dockerDeclaration()}
	steps, err := pipeline.BindSteps(p.decl, map[string]pipeline.StepFunc{
		"locate_image":        p.locateImage,
		"extract_image":       p.extractImage,
		"detect_os":           p.detectOS,
		"collect_resources":   p.collectResources,
		"scan_dpkg":           p.scanDpkg,
		"scan_apk":            p.scanApk,
		"detect_app_packages": p.detectAppPackages,
	})
	if err != nil {
		return nil, err
	}
	p.steps = steps
	return p, nil
}

func (p *analyzeDockerImage) Declaration() pipeline.Declaration { return p.decl }

func (p *analyzeDockerImage) Steps() []pipeline.Step { return p.steps }

func (p *analyzeDockerImage) locateImage(ctx context.Context) error {
	imagePath, err := docker.LocateImage(p.proj.InputDir())
	if err != nil {
		return err
	}
	p.imagePath = imagePath
	p.proj.Logger.Info("image located", "path", imagePath)
	return nil
}

func (p *analyzeDockerImage) extractImage(ctx context.Context) error {
	if p.imagePath == "" {
		return fmt.Errorf("no image located, run the locate_image step first")
	}
	if err := p.proj.ResetTmp(); err != nil {
		return err
	}

	extractor := docker.NewExtractor(
		docker.WithMaxExtractSize(p.cfg.MaxExtractSize),
		docker.WithExtractorLogger(p.proj.Logger),
	)
	info, err := extractor.ExtractImage(ctx, p.imagePath, p.proj.CodebaseDir(), p.proj.TmpDir())
	if err != nil {
		return err
	}

	p.proj.Logger.Info("image extracted",
		"tags", info.RepoTags, "layers", len(info.Layers))
	return nil
}

func (p *analyzeDockerImage) detectOS(ctx context.Context) error {
	osrel, err := scan.DetectOS(p.proj.CodebaseDir())
	if err != nil {
		return err
	}
	if osrel == nil {
		p.proj.Logger.Info("no os-release found in image")
		return nil
	}

	data, err := json.MarshalIndent(osrel, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode os-release: %w", err)
	}
	out := filepath.Join(p.proj.OutputDir(), "os.json")
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("failed to write os-release: %w", err)
	}

	p.proj.Logger.Info("operating system detected",
		"id", osrel.ID, "version", osrel.VersionID, "name", osrel.PrettyName)
	return nil
}

func (p *analyzeDockerImage) collectResources(ctx context.Context) error {
	_, err := collectResources(ctx, p.proj, p.cfg)
	return err
}

func (p *analyzeDockerImage) scanDpkg(ctx context.Context) error {
	manifests, err := scan.DetectPackages(ctx, p.proj.CodebaseDir(),
		[]scan.Detector{scan.NewDpkgDetector()}, p.proj.Logger)
	if err != nil {
		return err
	}
	return persistInventory(ctx, p.proj, manifests)
}

func (p *analyzeDockerImage) scanApk(ctx context.Context) error {
	manifests, err := scan.DetectPackages(ctx, p.proj.CodebaseDir(),
		[]scan.Detector{scan.NewApkDetector()}, p.proj.Logger)
	if err != nil {
		return err
	}
	return persistInventory(ctx, p.proj, manifests)
}

func (p *analyzeDockerImage) detectAppPackages(ctx context.Context) error {
	manifests, err := scan.DetectPackages(ctx, p.proj.CodebaseDir(), scan.DefaultDetectors(), p.proj.Logger)
	if err != nil {
		return err
	}
	return persistInventory(ctx, p.proj, manifests)
}
