package pipelines

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/codescan-dev/codescan/internal/config"
	"github.com/codescan-dev/codescan/internal/model"
	"github.com/codescan-dev/codescan/internal/project"
	"github.com/codescan-dev/codescan/internal/scan"
)

// collectResources walks the project codebase, records the resource
// inventory, and returns it for steps that keep working on the slice.
func collectResources(ctx context.Context, proj *project.Project, cfg *config.Config) ([]model.CodebaseResource, error) {
	collector := scan.NewCollector(
		scan.WithWorkers(cfg.ScanWorkers),
		scan.WithMaxFileSize(cfg.MaxFileSize),
		scan.WithCollectorLogger(proj.Logger),
	)
	resources, err := collector.Collect(ctx, proj.CodebaseDir())
	if err != nil {
		return nil, err
	}
	if err := proj.DB.ReplaceResources(ctx, proj.Meta.ID, resources); err != nil {
		return nil, err
	}
	proj.Logger.Info("resources recorded", "count", len(resources))
	return resources, nil
}

// persistInventory records every manifest's packages and dependencies.
// Dependencies are attached to the manifest's subject package when the
// manifest declares one; standalone manifests leave the link at zero.
func persistInventory(ctx context.Context, proj *project.Project, manifests []scan.Manifest) error {
	var packages, dependencies int
	for _, manifest := range manifests {
		var subjectID int64
		if manifest.Inventory.Subject != nil {
			pkg := *manifest.Inventory.Subject
			pkg.ProjectID = proj.Meta.ID
			id, err := proj.DB.UpsertPackage(ctx, &pkg)
			if err != nil {
				return err
			}
			subjectID = id
			packages++
		}

		for _, pkg := range manifest.Inventory.Packages {
			pkg.ProjectID = proj.Meta.ID
			if _, err := proj.DB.UpsertPackage(ctx, &pkg); err != nil {
				return err
			}
			packages++
		}

		for _, dep := range manifest.Inventory.Dependencies {
			dep.ProjectID = proj.Meta.ID
			dep.PackageID = subjectID
			if err := proj.DB.InsertDependency(ctx, &dep); err != nil {
				return err
			}
			dependencies++
		}
	}

	proj.Logger.Info("packages recorded",
		"manifests", len(manifests), "packages", packages, "dependencies", dependencies)
	return nil
}

// copyFile copies one regular file, creating or truncating the target.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", dst, err)
	}
	return nil
}
