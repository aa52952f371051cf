package scan

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/codescan-dev/codescan/internal/model"
)

// GoModDetector parses Go module manifests (go.mod).
type GoModDetector struct{}

// NewGoModDetector creates a Go module manifest detector.
func NewGoModDetector() *GoModDetector { return &GoModDetector{} }

// Ecosystem returns the package type identifier.
func (*GoModDetector) Ecosystem() string { return "golang" }

// Recognize matches go.mod files anywhere in the codebase.
func (*GoModDetector) Recognize(relPath string) bool {
	return path.Base(relPath) == "go.mod"
}

// Parse extracts the module declaration and its requirements.
func (*GoModDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	file, err := modfile.Parse(filePath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	inv := &Inventory{}
	if file.Module != nil && file.Module.Mod.Path != "" {
		namespace, name := splitGoModulePath(file.Module.Mod.Path)
		inv.Subject = &model.DiscoveredPackage{
			Type:      "golang",
			Namespace: namespace,
			Name:      name,
		}
	}

	for _, req := range file.Require {
		namespace, name := splitGoModulePath(req.Mod.Path)
		scope := "require"
		if req.Indirect {
			scope = "indirect"
		}
		inv.Dependencies = append(inv.Dependencies, model.PackageDependency{
			Type:       "golang",
			Namespace:  namespace,
			Name:       name,
			Constraint: req.Mod.Version,
			Scope:      scope,
		})
	}
	return inv, nil
}

// splitGoModulePath splits a module path into its package URL namespace
// (everything before the final segment) and name (the final segment).
func splitGoModulePath(modPath string) (namespace, name string) {
	if idx := strings.LastIndex(modPath, "/"); idx >= 0 {
		return modPath[:idx], modPath[idx+1:]
	}
	return "", modPath
}
