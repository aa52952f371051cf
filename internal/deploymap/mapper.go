// Package deploymap relates deployed artifacts back to the development
// sources they were built from. Resources collected under codebase/to
// are the deployed side, resources under codebase/from the development
// side; each mapper contributes relations with a confidence score that
// reflects the strength of its evidence.
package deploymap

import (
	"github.com/codescan-dev/codescan/internal/model"
)

// Mapper pairs deployed resources with development sources using one
// kind of evidence. Implementations are pure functions over the two
// resource slices; recording the relations is the caller's job.
type Mapper interface {
	// Kind names the evidence this mapper produces.
	Kind() model.RelationKind

	// Map returns the relations found between the deployed resources and
	// the development sources. Input order is preserved in the output so
	// repeated runs persist identical rows.
	Map(deployed, sources []model.CodebaseResource) []model.CodebaseRelation
}

// DefaultMappers returns the mappers every map_deploy_to_develop run
// applies. Language-specific mappers are selected separately through
// their step groups.
func DefaultMappers() []Mapper {
	return []Mapper{
		NewChecksumMapper(),
		NewPathSuffixMapper(),
	}
}

// newRelation builds a relation between a deployed resource and the
// source it was matched to.
func newRelation(deployed, source model.CodebaseResource, kind model.RelationKind, confidence float64) model.CodebaseRelation {
	return model.CodebaseRelation{
		ProjectID:    deployed.ProjectID,
		DeployedPath: deployed.Path,
		SourcePath:   source.Path,
		Kind:         kind,
		Confidence:   confidence,
	}
}

// mappableFiles filters a resource slice down to regular files; links
// and special entries carry no comparable content.
func mappableFiles(resources []model.CodebaseResource) []model.CodebaseResource {
	files := make([]model.CodebaseResource, 0, len(resources))
	for _, res := range resources {
		if res.Type == model.ResourceFile {
			files = append(files, res)
		}
	}
	return files
}
