package model

// Advisory is one vulnerability record loaded from an advisory file. The
// package block identifies the affected package, the affected block the
// version range, and Versions an optional explicit list of vulnerable
// versions.
type Advisory struct {
	// ID is the advisory identifier: a CVE, GHSA, or vendor id.
	ID string `yaml:"id" json:"id"`

	Summary  string   `yaml:"summary" json:"summary"`
	Severity Severity `yaml:"severity" json:"severity"`

	Package  AdvisoryPackage `yaml:"package" json:"package"`
	Affected AdvisoryRange   `yaml:"affected" json:"affected"`

	// Versions lists exact vulnerable versions. When present it is
	// checked in addition to the affected range.
	Versions []string `yaml:"versions,omitempty" json:"versions,omitempty"`

	References []string `yaml:"references,omitempty" json:"references,omitempty"`
}

// AdvisoryPackage identifies the package an advisory applies to, using the
// same type, namespace, and name coordinates as DiscoveredPackage.
type AdvisoryPackage struct {
	Type      string `yaml:"type" json:"type"`
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Name      string `yaml:"name" json:"name"`
}

// AdvisoryRange is a half-open version interval. Introduced is inclusive
// and Fixed exclusive; either side may be empty to leave the interval
// unbounded on that side.
type AdvisoryRange struct {
	Introduced string `yaml:"introduced,omitempty" json:"introduced,omitempty"`
	Fixed      string `yaml:"fixed,omitempty" json:"fixed,omitempty"`
}

// VulnerabilityFinding links a discovered package to an advisory that
// matched it.
type VulnerabilityFinding struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`

	// PackageID references the discovered package the advisory matched.
	PackageID int64 `json:"package_id"`

	// PackagePURL repeats the package identity so findings stay readable
	// without a join.
	PackagePURL string `json:"package_purl"`

	AdvisoryID string   `json:"advisory_id"`
	Summary    string   `json:"summary,omitempty"`
	Severity   Severity `json:"severity"`
}
