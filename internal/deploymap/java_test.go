package deploymap

import (
	"testing"

	"github.com/codescan-dev/codescan/internal/model"
)

func TestJavaMapper(t *testing.T) {
	t.Parallel()

	mapper := NewJavaMapper()

	deployed := []model.CodebaseResource{
		fileRes("to/classes/com/acme/Billing.class", ""),
		fileRes("to/classes/com/acme/Billing$Builder.class", ""),
		fileRes("to/classes/com/acme/Billing$1.class", ""),
		fileRes("to/classes/NOTICE.txt", ""),
	}
	sources := []model.CodebaseResource{
		fileRes("from/src/com/acme/Billing.java", ""),
		fileRes("from/src/com/acme/Invoice.java", ""),
	}

	relations := mapper.Map(deployed, sources)
	if len(relations) != 3 {
		t.Fatalf("expected 3 relations, got %d: %+v", len(relations), relations)
	}
	for i, rel := range relations {
		if rel.SourcePath != "from/src/com/acme/Billing.java" {
			t.Errorf("relation[%d] = %+v, want Billing.java source", i, rel)
		}
		if rel.Kind != model.RelationJavaSource || rel.Confidence != 0.7 {
			t.Errorf("relation[%d] = %+v, want java_source at 0.7", i, rel)
		}
	}
	if relations[1].DeployedPath != "to/classes/com/acme/Billing$Builder.class" {
		t.Errorf("expected inner class relation, got %+v", relations[1])
	}
}

func TestJavaMapperNameCollisions(t *testing.T) {
	t.Parallel()

	deployed := []model.CodebaseResource{fileRes("to/classes/Util.class", "")}
	sources := []model.CodebaseResource{
		fileRes("from/core/Util.java", ""),
		fileRes("from/web/Util.java", ""),
	}

	relations := NewJavaMapper().Map(deployed, sources)
	if len(relations) != 2 {
		t.Fatalf("expected one relation per candidate, got %+v", relations)
	}
}

func TestJavaSourceName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "Billing.class", want: "Billing.java"},
		{in: "Billing$Builder.class", want: "Billing.java"},
		{in: "Billing$1.class", want: "Billing.java"},
		{in: "Billing$Builder$2.class", want: "Billing.java"},
	}
	for _, tc := range testCases {
		if got := javaSourceName(tc.in); got != tc.want {
			t.Errorf("javaSourceName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
