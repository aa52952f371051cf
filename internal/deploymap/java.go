package deploymap

import (
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// JavaMapper pairs compiled .class files with the .java sources that
// produce them. Inner and anonymous classes (Foo$Bar.class, Foo$1.class)
// map to their enclosing class's source file.
type JavaMapper struct{}

// NewJavaMapper creates a Java class-to-source mapper.
func NewJavaMapper() *JavaMapper { return &JavaMapper{} }

// Kind returns the evidence kind.
func (*JavaMapper) Kind() model.RelationKind { return model.RelationJavaSource }

// Map relates each deployed class file to every source file carrying the
// expected name. Name collisions across packages produce one relation
// per candidate; the confidence stays below checksum evidence since only
// the file name is compared.
func (*JavaMapper) Map(deployed, sources []model.CodebaseResource) []model.CodebaseRelation {
	byName := make(map[string][]model.CodebaseResource)
	for _, src := range mappableFiles(sources) {
		if src.Extension == ".java" {
			byName[src.Name] = append(byName[src.Name], src)
		}
	}

	var relations []model.CodebaseRelation
	for _, dep := range mappableFiles(deployed) {
		if dep.Extension != ".class" {
			continue
		}
		for _, src := range byName[javaSourceName(dep.Name)] {
			relations = append(relations, newRelation(dep, src, model.RelationJavaSource, 0.7))
		}
	}
	return relations
}

// javaSourceName derives the source file name a class file compiles
// from: "Foo$Bar.class" and "Foo$1.class" both come from "Foo.java".
func javaSourceName(className string) string {
	base := strings.TrimSuffix(className, ".class")
	if i := strings.Index(base, "$"); i >= 0 {
		base = base[:i]
	}
	return base + ".java"
}
