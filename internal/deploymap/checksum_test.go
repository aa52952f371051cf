package deploymap

import (
	"testing"

	"github.com/codescan-dev/codescan/internal/model"
)

func TestChecksumMapper(t *testing.T) {
	t.Parallel()

	mapper := NewChecksumMapper()

	sources := []model.CodebaseResource{
		fileRes("from/src/app.js", "digest-x"),
		fileRes("from/vendor/app.js", "digest-x"),
		fileRes("from/README.md", "digest-y"),
	}
	deployed := []model.CodebaseResource{
		fileRes("to/static/app.js", "digest-x"),
		fileRes("to/static/logo.png", "digest-z"),
		fileRes("to/static/empty.bin", ""),
	}

	relations := mapper.Map(deployed, sources)
	if len(relations) != 2 {
		t.Fatalf("expected 2 relations, got %d: %+v", len(relations), relations)
	}

	for i, wantSource := range []string{"from/src/app.js", "from/vendor/app.js"} {
		rel := relations[i]
		if rel.DeployedPath != "to/static/app.js" || rel.SourcePath != wantSource {
			t.Errorf("relation[%d] = %+v, want source %s", i, rel, wantSource)
		}
		if rel.Kind != model.RelationChecksum || rel.Confidence != 1.0 {
			t.Errorf("relation[%d] = %+v, want checksum at 1.0", i, rel)
		}
		if rel.ProjectID != "p1" {
			t.Errorf("relation[%d] lost the project id: %+v", i, rel)
		}
	}
}

func TestChecksumMapperSkipsLinks(t *testing.T) {
	t.Parallel()

	link := fileRes("to/current", "digest-x")
	link.Type = model.ResourceSymlink
	sources := []model.CodebaseResource{fileRes("from/app.js", "digest-x")}

	if relations := NewChecksumMapper().Map([]model.CodebaseResource{link}, sources); len(relations) != 0 {
		t.Errorf("expected no relations for a symlink, got %+v", relations)
	}
}
