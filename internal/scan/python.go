package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/codescan-dev/codescan/internal/model"
)

// pypiSeparators collapses the separator runs PEP 503 treats as equal.
var pypiSeparators = regexp.MustCompile(`[-_.]+`)

// PipRequirementsDetector parses pip requirement files (requirements.txt).
type PipRequirementsDetector struct{}

// NewPipRequirementsDetector creates a pip requirements detector.
func NewPipRequirementsDetector() *PipRequirementsDetector {
	return &PipRequirementsDetector{}
}

// Ecosystem returns the package type identifier.
func (*PipRequirementsDetector) Ecosystem() string { return "pypi" }

// Recognize matches requirements.txt files anywhere in the codebase.
func (*PipRequirementsDetector) Recognize(relPath string) bool {
	return path.Base(relPath) == "requirements.txt"
}

// Parse extracts requirements line by line. Exact pins (name==version)
// become resolved packages; every other constraint becomes a dependency
// record. Option lines (-r, -e, --hash) are skipped.
func (*PipRequirementsDetector) Parse(ctx context.Context, filePath string) (*Inventory, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open requirements file: %w", err)
	}
	defer file.Close()

	inv := &Inventory{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// Strip environment markers and trailing comments.
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		name, constraint := splitRequirement(line)
		if name == "" {
			continue
		}

		if version, ok := strings.CutPrefix(constraint, "=="); ok {
			version = strings.TrimSpace(version)
			if version != "" && !strings.ContainsAny(version, "*,") {
				inv.Packages = append(inv.Packages, model.DiscoveredPackage{
					Type:    "pypi",
					Name:    name,
					Version: version,
				})
				continue
			}
		}
		inv.Dependencies = append(inv.Dependencies, model.PackageDependency{
			Type:       "pypi",
			Name:       name,
			Constraint: constraint,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}
	return inv, nil
}

// splitRequirement separates "requests[socks]>=2.31,<3" into the
// normalized project name and the raw constraint expression.
func splitRequirement(line string) (name, constraint string) {
	if idx := strings.IndexAny(line, "=<>!~"); idx >= 0 {
		name = strings.TrimSpace(line[:idx])
		constraint = strings.TrimSpace(line[idx:])
	} else {
		name = line
	}
	if bracket := strings.Index(name, "["); bracket >= 0 {
		name = name[:bracket]
	}
	return normalizePypiName(name), constraint
}

// normalizePypiName applies PEP 503 normalization: lowercase with runs of
// ".", "-" and "_" collapsed to a single "-".
func normalizePypiName(name string) string {
	return pypiSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
