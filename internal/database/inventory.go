package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/codescan-dev/codescan/internal/model"
)

// ReplaceResources swaps a project's resource inventory for the given set
// inside one transaction. Collection steps walk the whole codebase, so a
// full replace keeps re-runs from accumulating stale rows.
func (ws *Workspace) ReplaceResources(ctx context.Context, projectID string, resources []model.CodebaseResource) error {
	tx, err := ws.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM resources WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to clear resources: %w", err)
	}

	query := `
	INSERT INTO resources (project_id, path, type, name, extension, size, sha256, mime_type, tag)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare resource insert: %w", err)
	}
	defer stmt.Close()

	for i := range resources {
		r := &resources[i]
		if _, err := stmt.ExecContext(ctx,
			projectID, r.Path, r.Type.String(), r.Name, r.Extension, r.Size, r.SHA256, r.MimeType, r.Tag); err != nil {
			return fmt.Errorf("failed to insert resource %s: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit resources: %w", err)
	}
	return nil
}

// ListResources returns a project's resources ordered by path.
func (ws *Workspace) ListResources(ctx context.Context, projectID string) ([]model.CodebaseResource, error) {
	query := `
	SELECT id, path, type, name, extension, size, sha256, mime_type, tag
	FROM resources
	WHERE project_id = ?
	ORDER BY path
	`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []model.CodebaseResource
	for rows.Next() {
		var r model.CodebaseResource
		var resourceType string
		if err := rows.Scan(&r.ID, &r.Path, &resourceType, &r.Name, &r.Extension, &r.Size, &r.SHA256, &r.MimeType, &r.Tag); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		r.ProjectID = projectID
		r.Type = model.ParseResourceType(resourceType)
		resources = append(resources, r)
	}

	return resources, rows.Err()
}

// UpsertPackage inserts a discovered package or refreshes its manifest path
// when the same coordinates were already recorded. Returns the package row
// ID either way.
func (ws *Workspace) UpsertPackage(ctx context.Context, pkg *model.DiscoveredPackage) (int64, error) {
	query := `
	INSERT INTO packages (project_id, type, namespace, name, version, manifest_path)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(project_id, type, namespace, name, version) DO UPDATE SET
		manifest_path = excluded.manifest_path
	`
	_, err := ws.db.ExecContext(ctx, query,
		pkg.ProjectID, pkg.Type, pkg.Namespace, pkg.Name, pkg.Version, pkg.ManifestPath)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert package: %w", err)
	}

	// last_insert_rowid is unreliable across the upsert's update arm, so
	// read the row ID back by its unique coordinates.
	var id int64
	err = ws.db.QueryRowContext(ctx,
		`SELECT id FROM packages WHERE project_id = ? AND type = ? AND namespace = ? AND name = ? AND version = ?`,
		pkg.ProjectID, pkg.Type, pkg.Namespace, pkg.Name, pkg.Version).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read package id: %w", err)
	}

	pkg.ID = id
	return id, nil
}

// ListPackages returns a project's discovered packages ordered by type,
// namespace, and name.
func (ws *Workspace) ListPackages(ctx context.Context, projectID string) ([]model.DiscoveredPackage, error) {
	query := `
	SELECT id, type, namespace, name, version, manifest_path
	FROM packages
	WHERE project_id = ?
	ORDER BY type, namespace, name, version
	`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []model.DiscoveredPackage
	for rows.Next() {
		var p model.DiscoveredPackage
		if err := rows.Scan(&p.ID, &p.Type, &p.Namespace, &p.Name, &p.Version, &p.ManifestPath); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		p.ProjectID = projectID
		packages = append(packages, p)
	}

	return packages, rows.Err()
}

// InsertDependency records a declared dependency. Exact duplicates from
// re-parsing the same manifest are ignored.
func (ws *Workspace) InsertDependency(ctx context.Context, dep *model.PackageDependency) error {
	query := `
	INSERT INTO dependencies (project_id, package_id, type, namespace, name, version_constraint, scope, manifest_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(project_id, type, namespace, name, version_constraint, manifest_path) DO NOTHING
	`
	_, err := ws.db.ExecContext(ctx, query,
		dep.ProjectID, dep.PackageID, dep.Type, dep.Namespace, dep.Name, dep.Constraint, dep.Scope, dep.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to insert dependency: %w", err)
	}
	return nil
}

// ListDependencies returns a project's declared dependencies ordered by
// manifest path and name.
func (ws *Workspace) ListDependencies(ctx context.Context, projectID string) ([]model.PackageDependency, error) {
	query := `
	SELECT id, package_id, type, namespace, name, version_constraint, scope, manifest_path
	FROM dependencies
	WHERE project_id = ?
	ORDER BY manifest_path, name
	`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer rows.Close()

	var deps []model.PackageDependency
	for rows.Next() {
		var d model.PackageDependency
		if err := rows.Scan(&d.ID, &d.PackageID, &d.Type, &d.Namespace, &d.Name, &d.Constraint, &d.Scope, &d.ManifestPath); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		d.ProjectID = projectID
		deps = append(deps, d)
	}

	return deps, rows.Err()
}

// ReplaceRelations swaps a project's deploy-to-source relations for the
// given set inside one transaction.
func (ws *Workspace) ReplaceRelations(ctx context.Context, projectID string, relations []model.CodebaseRelation) error {
	tx, err := ws.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to clear relations: %w", err)
	}

	query := `
	INSERT INTO relations (project_id, deployed_path, source_path, kind, confidence)
	VALUES (?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare relation insert: %w", err)
	}
	defer stmt.Close()

	for i := range relations {
		r := &relations[i]
		if _, err := stmt.ExecContext(ctx,
			projectID, r.DeployedPath, r.SourcePath, r.Kind.String(), r.Confidence); err != nil {
			return fmt.Errorf("failed to insert relation %s: %w", r.DeployedPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit relations: %w", err)
	}
	return nil
}

// ListRelations returns a project's relations ordered by deployed path.
func (ws *Workspace) ListRelations(ctx context.Context, projectID string) ([]model.CodebaseRelation, error) {
	query := `
	SELECT id, deployed_path, source_path, kind, confidence
	FROM relations
	WHERE project_id = ?
	ORDER BY deployed_path, source_path
	`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()

	var relations []model.CodebaseRelation
	for rows.Next() {
		var r model.CodebaseRelation
		var kind string
		if err := rows.Scan(&r.ID, &r.DeployedPath, &r.SourcePath, &kind, &r.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		r.ProjectID = projectID
		r.Kind = model.ParseRelationKind(kind)
		relations = append(relations, r)
	}

	return relations, rows.Err()
}

// InsertFinding records a vulnerability finding. Re-matching the same
// advisory against the same package is ignored.
func (ws *Workspace) InsertFinding(ctx context.Context, f *model.VulnerabilityFinding) error {
	query := `
	INSERT INTO findings (project_id, package_id, package_purl, advisory_id, summary, severity)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(project_id, package_id, advisory_id) DO NOTHING
	`
	_, err := ws.db.ExecContext(ctx, query,
		f.ProjectID, f.PackageID, f.PackagePURL, f.AdvisoryID, f.Summary, f.Severity.String())
	if err != nil {
		return fmt.Errorf("failed to insert finding: %w", err)
	}
	return nil
}

// ListFindings returns a project's vulnerability findings ordered by
// severity, most severe first.
func (ws *Workspace) ListFindings(ctx context.Context, projectID string) ([]model.VulnerabilityFinding, error) {
	query := `
	SELECT id, package_id, package_purl, advisory_id, summary, severity
	FROM findings
	WHERE project_id = ?
	`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var findings []model.VulnerabilityFinding
	for rows.Next() {
		var f model.VulnerabilityFinding
		var severity string
		if err := rows.Scan(&f.ID, &f.PackageID, &f.PackagePURL, &f.AdvisoryID, &f.Summary, &severity); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.ProjectID = projectID
		f.Severity = model.ParseSeverity(severity)
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort in Go because the severity column stores names, not ranks.
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.PackagePURL != b.PackagePURL {
			return a.PackagePURL < b.PackagePURL
		}
		return a.AdvisoryID < b.AdvisoryID
	})
	return findings, nil
}
