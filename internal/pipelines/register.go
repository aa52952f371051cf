package pipelines

import (
	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/project"
)

// RegisterAll adds every built-in pipeline to reg. The factories close
// over cfg so size caps and worker counts follow the host configuration.
func RegisterAll(reg *pipeline.Registry, cfg *config.Config) error {
	defs := []pipeline.Definition{
		{
			Declaration: inspectDeclaration(),
			New: func(proj *project.Project) (pipeline.Pipeline, error) {
				return NewInspectCodebase(proj, cfg)
			},
		},
		{
			Declaration: dockerDeclaration(),
			New: func(proj *project.Project) (pipeline.Pipeline, error) {
				return NewAnalyzeDockerImage(proj, cfg)
			},
		},
		{
			Declaration: vulnerabilitiesDeclaration(),
			New: func(proj *project.Project) (pipeline.Pipeline, error) {
				return NewFindVulnerabilities(proj, cfg)
			},
		},
		{
			Declaration: deploymapDeclaration(),
			New: func(proj *project.Project) (pipeline.Pipeline, error) {
				return NewMapDeployToDevelop(proj, cfg)
			},
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}
