package report

import (
	"context"
	"fmt"
	"time"

	"github.com/codescan-dev/codescan/internal/database"
	"github.com/codescan-dev/codescan/internal/model"
)

// Summary is the aggregate view of a project that report writers render.
// It is assembled from the workspace records by BuildSummary and carries
// everything a writer needs, so rendering never touches the database.
type Summary struct {
	// Project is the project name the summary was built for.
	Project string `json:"project"`

	// GeneratedAt is when the summary was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Runs lists the project's pipeline runs, newest first.
	Runs []RunSummary `json:"runs"`

	ResourceCount   int `json:"resource_count"`
	PackageCount    int `json:"package_count"`
	DependencyCount int `json:"dependency_count"`
	RelationCount   int `json:"relation_count"`

	// TotalSize is the byte sum of all collected codebase resources.
	TotalSize int64 `json:"total_size"`

	// PackageTypes counts discovered packages per ecosystem,
	// e.g. {"deb": 84, "npm": 12}.
	PackageTypes map[string]int `json:"package_types,omitempty"`

	// Packages and Findings carry the full inventory rows in their
	// stored order so writers can render tables without re-querying.
	Packages []model.DiscoveredPackage    `json:"packages,omitempty"`
	Findings []model.VulnerabilityFinding `json:"findings,omitempty"`

	// Per-severity finding counts, precomputed for summary tables.
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	UnknownCount  int `json:"unknown_count"`
}

// TotalFindings returns the number of vulnerability findings.
func (s *Summary) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings reports whether any advisory matched a discovered package.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// FindingsBySeverity returns the findings carrying the given severity,
// preserving their stored order.
func (s *Summary) FindingsBySeverity(severity model.Severity) []model.VulnerabilityFinding {
	var findings []model.VulnerabilityFinding
	for _, f := range s.Findings {
		if f.Severity == severity {
			findings = append(findings, f)
		}
	}
	return findings
}

// RunSummary is the per-run slice of a project summary. Status holds the
// stable lowercase form so the summary reads the same in every format.
type RunSummary struct {
	ID            string   `json:"id"`
	Pipeline      string   `json:"pipeline"`
	Status        string   `json:"status"`
	ExitCode      int      `json:"exit_code"`
	Error         string   `json:"error,omitempty"`
	ExecutedSteps []string `json:"executed_steps,omitempty"`

	// Duration is the human-readable wall-clock time of a finalized run,
	// empty while the run is still pending.
	Duration string `json:"duration,omitempty"`
}

// newRunSummary converts a stored run into its summary form.
func newRunSummary(r *model.Run) RunSummary {
	rs := RunSummary{
		ID:            r.ID,
		Pipeline:      r.Pipeline,
		Status:        r.Status.String(),
		ExitCode:      r.ExitCode,
		Error:         r.Error,
		ExecutedSteps: r.ExecutedSteps,
	}
	if d := r.Duration(); d > 0 {
		rs.Duration = d.Round(time.Millisecond).String()
	}
	return rs
}

// BuildSummary assembles the renderable view of a project from its
// workspace records.
func BuildSummary(ctx context.Context, ws *database.Workspace, proj *model.Project) (*Summary, error) {
	runs, err := ws.ListRuns(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	resources, err := ws.ListResources(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	packages, err := ws.ListPackages(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	dependencies, err := ws.ListDependencies(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	relations, err := ws.ListRelations(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	findings, err := ws.ListFindings(ctx, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}

	s := &Summary{
		Project:         proj.Name,
		GeneratedAt:     time.Now().UTC(),
		ResourceCount:   len(resources),
		PackageCount:    len(packages),
		DependencyCount: len(dependencies),
		RelationCount:   len(relations),
		PackageTypes:    make(map[string]int),
		Packages:        packages,
		Findings:        findings,
	}

	for i := range runs {
		s.Runs = append(s.Runs, newRunSummary(&runs[i]))
	}
	for _, res := range resources {
		s.TotalSize += res.Size
	}
	for _, pkg := range packages {
		s.PackageTypes[pkg.Type]++
	}
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityCritical:
			s.CriticalCount++
		case model.SeverityHigh:
			s.HighCount++
		case model.SeverityMedium:
			s.MediumCount++
		case model.SeverityLow:
			s.LowCount++
		default:
			s.UnknownCount++
		}
	}

	return s, nil
}
