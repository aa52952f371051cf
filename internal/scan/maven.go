package scan

import (
	"context"
	"fmt"
	"path"

	"github.com/vifraa/gopom"

	"github.com/codescan-dev/codescan/internal/model"
)

// MavenDetector parses Maven project manifests (pom.xml).
type MavenDetector struct{}

// NewMavenDetector creates a Maven manifest detector.
func NewMavenDetector() *MavenDetector { return &MavenDetector{} }

// Ecosystem returns the package type identifier.
func (*MavenDetector) Ecosystem() string { return "maven" }

// Recognize matches pom.xml files anywhere in the codebase.
func (*MavenDetector) Recognize(relPath string) bool {
	return path.Base(relPath) == "pom.xml"
}

// Parse extracts the project coordinates and declared dependencies.
// Versions referencing Maven properties (${...}) are kept verbatim;
// property interpolation needs the full effective-pom model.
func (*MavenDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	pom, err := gopom.Parse(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pom.xml: %w", err)
	}

	// groupId and version may be inherited from the parent project.
	groupID := deref(pom.GroupID)
	version := deref(pom.Version)
	if pom.Parent != nil {
		if groupID == "" {
			groupID = deref(pom.Parent.GroupID)
		}
		if version == "" {
			version = deref(pom.Parent.Version)
		}
	}

	inv := &Inventory{}
	if artifactID := deref(pom.ArtifactID); artifactID != "" {
		inv.Subject = &model.DiscoveredPackage{
			Type:      "maven",
			Namespace: groupID,
			Name:      artifactID,
			Version:   version,
		}
	}

	if pom.Dependencies != nil {
		for _, dep := range *pom.Dependencies {
			name := deref(dep.ArtifactID)
			if name == "" {
				continue
			}
			inv.Dependencies = append(inv.Dependencies, model.PackageDependency{
				Type:       "maven",
				Namespace:  deref(dep.GroupID),
				Name:       name,
				Constraint: deref(dep.Version),
				Scope:      deref(dep.Scope),
			})
		}
	}
	return inv, nil
}

// deref unwraps gopom's pointer fields, mapping absent elements to "".
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
