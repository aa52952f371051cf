package pipelines

import (
	"context"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/deploymap"
	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/pipeline"
	"github.com/codescan-dev/codescan/internal/project"
)

// mapDeployToDevelop relates files of a deployed artifact back to their
// development sources. The codebase must hold the deployed tree under to/
// and the source tree under from/ before the pipeline runs.
type mapDeployToDevelop struct {
	proj  *project.Project
	cfg   *config.Config
	decl  pipeline.Declaration
	steps []pipeline.Step

	// deployed and sources are split out of the collected resources by
	// collect_resources. relations accumulates across the mapping steps
	// until save_relations persists them.
	deployed  []model.CodebaseResource
	sources   []model.CodebaseResource
	relations []model.CodebaseRelation
}

func deploymapDeclaration() pipeline.Declaration {
	return pipeline.Declaration{
		Name:        "map_deploy_to_develop",
		Description: "Relate deployed files back to their development sources",
		Steps: []pipeline.StepSpec{
			{Name: "collect_resources", Description: "Walk the codebase and split resources into deployed and source sides"},
			{Name: "map_checksums", Description: "Relate files whose content digests are identical"},
			{Name: "map_path_suffixes", Description: "Relate files that share a trailing path"},
			{Name: "map_java", Description: "Relate compiled Java classes to their source files",
				Optional: true, Groups: []string{"java"}},
			{Name: "map_javascript", Description: "Relate minified scripts and source maps to their sources",
				Optional: true, Groups: []string{"javascript"}},
			{Name: "save_relations", Description: "Replace the project's stored relations with the mapped set"},
		},
	}
}

// NewMapDeployToDevelop builds the map_deploy_to_develop pipeline over a
// project.
func NewMapDeployToDevelop(proj *project.Project, cfg *config.Config) (pipeline.Pipeline, error) {
	p := &mapDeployToDevelop{proj: proj, cfg: cfg, decl: deploymapDeclaration()}
	steps, err := pipeline.BindSteps(p.decl, map[string]pipeline.StepFunc{
		"collect_resources": p.collectResources,
		"map_checksums":     p.mapChecksums,
		"map_path_suffixes": p.mapPathSuffixes,
		"map_java":          p.mapJava,
		"map_javascript":    p.mapJavaScript,
		"save_relations":    p.saveRelations,
	})
	if err != nil {
		return nil, err
	}
	p.steps = steps
	return p, nil
}

func (p *mapDeployToDevelop) Declaration() pipeline.Declaration { return p.decl }

func (p *mapDeployToDevelop) Steps() []pipeline.Step { return p.steps }

func (p *mapDeployToDevelop) collectResources(ctx context.Context) error {
	resources, err := collectResources(ctx, p.proj, p.cfg)
	if err != nil {
		return err
	}

	for _, res := range resources {
		switch res.Tag {
		case model.TagTo:
			p.deployed = append(p.deployed, res)
		case model.TagFrom:
			p.sources = append(p.sources, res)
		}
	}

	p.proj.Logger.Info("resources split",
		"deployed", len(p.deployed), "sources", len(p.sources))
	return nil
}

// unmappedDeployed returns the deployed resources no earlier mapper has
// related yet, so each mapper only works on what its predecessors left.
func (p *mapDeployToDevelop) unmappedDeployed() []model.CodebaseResource {
	mapped := make(map[string]struct{}, len(p.relations))
	for _, rel := range p.relations {
		mapped[rel.DeployedPath] = struct{}{}
	}

	var remaining []model.CodebaseResource
	for _, res := range p.deployed {
		if _, ok := mapped[res.Path]; !ok {
			remaining = append(remaining, res)
		}
	}
	return remaining
}

func (p *mapDeployToDevelop) applyMapper(mapper deploymap.Mapper) {
	relations := mapper.Map(p.unmappedDeployed(), p.sources)
	p.relations = append(p.relations, relations...)
	p.proj.Logger.Info("mapper applied",
		"kind", mapper.Kind().String(), "relations", len(relations))
}

func (p *mapDeployToDevelop) mapChecksums(ctx context.Context) error {
	p.applyMapper(deploymap.NewChecksumMapper())
	return nil
}

func (p *mapDeployToDevelop) mapPathSuffixes(ctx context.Context) error {
	p.applyMapper(deploymap.NewPathSuffixMapper())
	return nil
}

func (p *mapDeployToDevelop) mapJava(ctx context.Context) error {
	p.applyMapper(deploymap.NewJavaMapper())
	return nil
}

func (p *mapDeployToDevelop) mapJavaScript(ctx context.Context) error {
	p.applyMapper(deploymap.NewJavaScriptMapper())
	return nil
}

func (p *mapDeployToDevelop) saveRelations(ctx context.Context) error {
	if err := p.proj.DB.ReplaceRelations(ctx, p.proj.Meta.ID, p.relations); err != nil {
		return err
	}
	p.proj.Logger.Info("relations saved", "count", len(p.relations))
	return nil
}
