package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// NpmDetector parses npm package manifests (package.json).
type NpmDetector struct{}

// NewNpmDetector creates an npm manifest detector.
func NewNpmDetector() *NpmDetector { return &NpmDetector{} }

// Ecosystem returns the package type identifier.
func (*NpmDetector) Ecosystem() string { return "npm" }

// Recognize matches package.json files anywhere in the codebase.
func (*NpmDetector) Recognize(relPath string) bool {
	return path.Base(relPath) == "package.json"
}

// packageJSON is the subset of package.json the detector reads.
type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Parse extracts the declared package and its dependency constraints.
func (*NpmDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}
	var manifest packageJSON
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	inv := &Inventory{}
	if manifest.Name != "" {
		namespace, name := splitNpmName(manifest.Name)
		inv.Subject = &model.DiscoveredPackage{
			Type:      "npm",
			Namespace: namespace,
			Name:      name,
			Version:   manifest.Version,
		}
	}
	inv.Dependencies = append(inv.Dependencies, npmDependencies(manifest.Dependencies, "dependencies")...)
	inv.Dependencies = append(inv.Dependencies, npmDependencies(manifest.DevDependencies, "devDependencies")...)
	return inv, nil
}

// npmDependencies converts a name-to-constraint map into dependency
// records, sorted by name so output order never depends on map iteration.
func npmDependencies(deps map[string]string, scope string) []model.PackageDependency {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.PackageDependency, 0, len(names))
	for _, full := range names {
		namespace, name := splitNpmName(full)
		out = append(out, model.PackageDependency{
			Type:       "npm",
			Namespace:  namespace,
			Name:       name,
			Constraint: deps[full],
			Scope:      scope,
		})
	}
	return out
}

// splitNpmName separates a scoped module name ("@babel/core") into the
// scope namespace and the bare name.
func splitNpmName(full string) (namespace, name string) {
	if strings.HasPrefix(full, "@") {
		if idx := strings.Index(full, "/"); idx > 0 {
			return full[:idx], full[idx+1:]
		}
	}
	return "", full
}

// NpmLockDetector parses npm lockfiles (package-lock.json), which record
// the resolved version of every installed module.
type NpmLockDetector struct{}

// NewNpmLockDetector creates an npm lockfile detector.
func NewNpmLockDetector() *NpmLockDetector { return &NpmLockDetector{} }

// Ecosystem returns the package type identifier.
func (*NpmLockDetector) Ecosystem() string { return "npm" }

// Recognize matches package-lock.json files anywhere in the codebase.
func (*NpmLockDetector) Recognize(relPath string) bool {
	return path.Base(relPath) == "package-lock.json"
}

// lockEntry is one resolved module in a lockfile.
type lockEntry struct {
	Version string `json:"version"`
}

// packageLockJSON covers both layouts: v2/v3 lockfiles key the packages
// map by node_modules path, v1 lockfiles key dependencies by module name.
type packageLockJSON struct {
	Packages     map[string]lockEntry `json:"packages"`
	Dependencies map[string]lockEntry `json:"dependencies"`
}

// Parse extracts the resolved packages recorded by the lockfile. The root
// entry (empty key) is skipped; the package.json detector already covers
// the project's own declaration.
func (*NpmLockDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read package-lock.json: %w", err)
	}
	var lock packageLockJSON
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("failed to parse package-lock.json: %w", err)
	}

	inv := &Inventory{}
	seen := make(map[string]bool)
	add := func(full, version string) {
		if full == "" || version == "" {
			return
		}
		key := full + "@" + version
		if seen[key] {
			return
		}
		seen[key] = true
		namespace, name := splitNpmName(full)
		inv.Packages = append(inv.Packages, model.DiscoveredPackage{
			Type:      "npm",
			Namespace: namespace,
			Name:      name,
			Version:   version,
		})
	}

	if len(lock.Packages) > 0 {
		for _, key := range sortedKeys(lock.Packages) {
			if key == "" {
				continue
			}
			add(lockModuleName(key), lock.Packages[key].Version)
		}
		return inv, nil
	}
	for _, name := range sortedKeys(lock.Dependencies) {
		add(name, lock.Dependencies[name].Version)
	}
	return inv, nil
}

// lockModuleName extracts the module name from a v2/v3 packages key such
// as "node_modules/@babel/core" or "node_modules/a/node_modules/b".
func lockModuleName(key string) string {
	const marker = "node_modules/"
	if idx := strings.LastIndex(key, marker); idx >= 0 {
		return key[idx+len(marker):]
	}
	return key
}

// sortedKeys returns the map keys in ascending order.
func sortedKeys(entries map[string]lockEntry) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
