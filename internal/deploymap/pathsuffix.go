package deploymap

import (
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// PathSuffixMapper pairs resources whose paths end in the same segment
// sequence. Two shared segments (a directory plus the file name) are the
// minimum evidence; every extra shared segment raises the confidence.
type PathSuffixMapper struct{}

// NewPathSuffixMapper creates a path suffix mapper.
func NewPathSuffixMapper() *PathSuffixMapper { return &PathSuffixMapper{} }

// Kind returns the evidence kind.
func (*PathSuffixMapper) Kind() model.RelationKind { return model.RelationPathSuffix }

// Map relates each deployed file to the sources sharing its longest path
// suffix. Only the best suffix length per deployed file produces
// relations, so a deep match is never diluted by shallower ones. The
// from/to tag segments differ by construction and end every shared
// suffix before it reaches the codebase root.
func (*PathSuffixMapper) Map(deployed, sources []model.CodebaseResource) []model.CodebaseRelation {
	srcFiles := mappableFiles(sources)
	srcSegments := make([][]string, len(srcFiles))
	for i, src := range srcFiles {
		srcSegments[i] = strings.Split(src.Path, "/")
	}

	var relations []model.CodebaseRelation
	for _, dep := range mappableFiles(deployed) {
		depSegments := strings.Split(dep.Path, "/")

		best := 0
		var matches []int
		for i := range srcFiles {
			n := sharedSuffixLen(depSegments, srcSegments[i])
			switch {
			case n > best:
				best = n
				matches = append(matches[:0], i)
			case n == best && n > 0:
				matches = append(matches, i)
			}
		}
		if best < 2 {
			continue
		}

		confidence := 0.5 + 0.1*float64(best-2)
		if confidence > 0.9 {
			confidence = 0.9
		}
		for _, i := range matches {
			relations = append(relations, newRelation(dep, srcFiles[i], model.RelationPathSuffix, confidence))
		}
	}
	return relations
}

// sharedSuffixLen counts how many trailing segments two paths share.
func sharedSuffixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) {
		if a[len(a)-1-n] != b[len(b)-1-n] {
			break
		}
		n++
	}
	return n
}
