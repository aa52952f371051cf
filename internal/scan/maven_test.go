package scan

import (
	"context"
	"testing"
)

func TestMavenDetector(t *testing.T) {
	t.Parallel()

	det := NewMavenDetector()

	t.Run("recognize", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			path string
			want bool
		}{
			{path: "pom.xml", want: true},
			{path: "modules/core/pom.xml", want: true},
			{path: "pom.xml.bak", want: false},
			{path: "settings.xml", want: false},
		}
		for _, tc := range testCases {
			if got := det.Recognize(tc.path); got != tc.want {
				t.Errorf("Recognize(%q) = %v, want %v", tc.path, got, tc.want)
			}
		}
	})

	t.Run("parses coordinates and dependencies", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := writeFile(t, root, "pom.xml", `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>org.acme</groupId>
  <artifactId>billing-service</artifactId>
  <version>2.1.0</version>
  <dependencies>
    <dependency>
      <groupId>org.apache.commons</groupId>
      <artifactId>commons-lang3</artifactId>
      <version>3.14.0</version>
    </dependency>
    <dependency>
      <groupId>org.junit.jupiter</groupId>
      <artifactId>junit-jupiter</artifactId>
      <version>5.10.2</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>
`)

		inv, err := det.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		subject := inv.Subject
		if subject == nil {
			t.Fatal("expected a subject package")
		}
		if subject.Type != "maven" || subject.Namespace != "org.acme" || subject.Name != "billing-service" || subject.Version != "2.1.0" {
			t.Errorf("unexpected subject %+v", subject)
		}

		deps := inv.Dependencies
		if len(deps) != 2 {
			t.Fatalf("expected 2 dependencies, got %d: %+v", len(deps), deps)
		}
		if deps[0].Namespace != "org.apache.commons" || deps[0].Name != "commons-lang3" || deps[0].Constraint != "3.14.0" {
			t.Errorf("unexpected dependency %+v", deps[0])
		}
		if deps[0].Scope != "" {
			t.Errorf("expected empty scope for compile dependency, got %q", deps[0].Scope)
		}
		if deps[1].Scope != "test" {
			t.Errorf("expected test scope, got %+v", deps[1])
		}
	})

	t.Run("inherits group and version from parent", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := writeFile(t, root, "pom.xml", `<?xml version="1.0" encoding="UTF-8"?>
<project>
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.acme</groupId>
    <artifactId>acme-parent</artifactId>
    <version>7.0.0</version>
  </parent>
  <artifactId>billing-worker</artifactId>
</project>
`)

		inv, err := det.Parse(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		subject := inv.Subject
		if subject == nil {
			t.Fatal("expected a subject package")
		}
		if subject.Namespace != "org.acme" || subject.Name != "billing-worker" || subject.Version != "7.0.0" {
			t.Errorf("expected parent coordinates to apply, got %+v", subject)
		}
	})

	t.Run("malformed xml returns an error", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := writeFile(t, root, "pom.xml", "<project><artifactId>unclosed</project>")

		if _, err := det.Parse(context.Background(), path); err == nil {
			t.Error("expected parse error, got nil")
		}
	})
}
