package deploymap

import (
	"github.com/codescan-dev/codescan/internal/model"
)

// ChecksumMapper pairs resources whose SHA256 digests are identical.
// Identical content is proof of provenance, so relations carry full
// confidence.
type ChecksumMapper struct{}

// NewChecksumMapper creates a checksum mapper.
func NewChecksumMapper() *ChecksumMapper { return &ChecksumMapper{} }

// Kind returns the evidence kind.
func (*ChecksumMapper) Kind() model.RelationKind { return model.RelationChecksum }

// Map relates every deployed file to every source file sharing its
// digest. Files without a digest (oversized or unreadable during
// collection) are skipped.
func (*ChecksumMapper) Map(deployed, sources []model.CodebaseResource) []model.CodebaseRelation {
	byDigest := make(map[string][]model.CodebaseResource)
	for _, src := range mappableFiles(sources) {
		if src.SHA256 == "" {
			continue
		}
		byDigest[src.SHA256] = append(byDigest[src.SHA256], src)
	}

	var relations []model.CodebaseRelation
	for _, dep := range mappableFiles(deployed) {
		if dep.SHA256 == "" {
			continue
		}
		for _, src := range byDigest[dep.SHA256] {
			relations = append(relations, newRelation(dep, src, model.RelationChecksum, 1.0))
		}
	}
	return relations
}
