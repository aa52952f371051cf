package scan

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/codescan-dev/codescan/internal/model"
)

// Inventory is the package data extracted from one manifest file.
type Inventory struct {
	// Subject is the package the manifest itself declares, when the format
	// has one (the go.mod module, the pom project, the package.json name).
	Subject *model.DiscoveredPackage

	// Packages are resolved packages recorded by the manifest: lockfile
	// entries, pinned requirements, installed system packages.
	Packages []model.DiscoveredPackage

	// Dependencies are declared requirements. Callers attach them to the
	// persisted Subject when one exists.
	Dependencies []model.PackageDependency
}

// Detector recognizes and parses one manifest format.
//
// Design decision: We use an interface rather than a format switch because:
//  1. Manifest formats require vastly different parsers
//  2. Allows for easy mocking in tests
//  3. Pipelines can choose detector sets per codebase kind (application
//     manifests vs installed system package databases)
type Detector interface {
	// Ecosystem returns the package type identifier used in records and
	// package URLs (e.g. "golang", "maven", "npm", "pypi", "deb", "apk").
	Ecosystem() string

	// Recognize reports whether the file at the given codebase-relative
	// slash path is a manifest this detector can parse.
	Recognize(relPath string) bool

	// Parse extracts the inventory from the manifest at the absolute path.
	// Implementations leave ManifestPath empty; the walker fills it in with
	// the codebase-relative path.
	Parse(ctx context.Context, path string) (*Inventory, error)
}

// Manifest pairs a recognized manifest with its extracted inventory.
type Manifest struct {
	Ecosystem string
	Path      string
	Inventory Inventory
}

// DetectPackages walks the codebase rooted at root and parses every file
// recognized by one of the detectors, in walk (lexical) order. A manifest
// that fails to parse is skipped with a warning; a broken file must not
// abort the inventory of the rest of the codebase.
func DetectPackages(ctx context.Context, root string, detectors []Detector, logger *slog.Logger) ([]Manifest, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var manifests []Manifest
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, det := range detectors {
			if !det.Recognize(rel) {
				continue
			}
			inv, err := det.Parse(ctx, path)
			if err != nil {
				logger.Warn("manifest skipped",
					"ecosystem", det.Ecosystem(),
					"path", rel,
					"error", err,
				)
				continue
			}
			if inv.Subject != nil {
				inv.Subject.ManifestPath = rel
			}
			for i := range inv.Packages {
				inv.Packages[i].ManifestPath = rel
			}
			for i := range inv.Dependencies {
				inv.Dependencies[i].ManifestPath = rel
			}
			manifests = append(manifests, Manifest{
				Ecosystem: det.Ecosystem(),
				Path:      rel,
				Inventory: *inv,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifests, nil
}

// DefaultDetectors returns the application manifest detectors in a stable
// order.
func DefaultDetectors() []Detector {
	return []Detector{
		NewGoModDetector(),
		NewMavenDetector(),
		NewNpmDetector(),
		NewNpmLockDetector(),
		NewPipRequirementsDetector(),
	}
}

// OSDetectors returns the installed system package database detectors.
// These run as optional pipeline steps over extracted filesystem images.
func OSDetectors() []Detector {
	return []Detector{
		NewDpkgDetector(),
		NewApkDetector(),
	}
}
