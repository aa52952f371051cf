package deploymap

import (
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// JavaScriptMapper pairs minified scripts and source maps with their
// unminified sources: app.min.js, app.min.js.map and app.js.map all map
// back to app.js.
type JavaScriptMapper struct{}

// NewJavaScriptMapper creates a JavaScript minification mapper.
func NewJavaScriptMapper() *JavaScriptMapper { return &JavaScriptMapper{} }

// Kind returns the evidence kind.
func (*JavaScriptMapper) Kind() model.RelationKind { return model.RelationJavaScriptSource }

// Map relates each deployed minified artifact to every source file
// carrying the expected name.
func (*JavaScriptMapper) Map(deployed, sources []model.CodebaseResource) []model.CodebaseRelation {
	byName := make(map[string][]model.CodebaseResource)
	for _, src := range mappableFiles(sources) {
		if src.Extension == ".js" {
			byName[src.Name] = append(byName[src.Name], src)
		}
	}

	var relations []model.CodebaseRelation
	for _, dep := range mappableFiles(deployed) {
		want, ok := jsSourceName(dep.Name)
		if !ok {
			continue
		}
		for _, src := range byName[want] {
			relations = append(relations, newRelation(dep, src, model.RelationJavaScriptSource, 0.8))
		}
	}
	return relations
}

// jsSourceName derives the unminified source name from a deployed
// artifact name. It reports false for names that carry no minification
// or source map marker.
func jsSourceName(name string) (string, bool) {
	stripped := strings.TrimSuffix(name, ".map")
	hadMap := stripped != name
	if strings.HasSuffix(stripped, ".min.js") {
		return strings.TrimSuffix(stripped, ".min.js") + ".js", true
	}
	if hadMap && strings.HasSuffix(stripped, ".js") {
		return stripped, true
	}
	return "", false
}
