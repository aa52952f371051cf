package model

import (
	"net/url"
	"strings"
)

// DiscoveredPackage is a software package identified in a codebase, either
// declared by a manifest or installed in a filesystem image.
type DiscoveredPackage struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`

	// Type is the package ecosystem: golang, maven, npm, pypi, deb, apk.
	Type string `json:"type"`

	// Namespace is the ecosystem-specific grouping: the Maven groupId,
	// the npm scope, the Go module path prefix. Empty when the ecosystem
	// has no such notion.
	Namespace string `json:"namespace,omitempty"`

	Name    string `json:"name"`
	Version string `json:"version,omitempty"`

	// ManifestPath is the codebase-relative path of the file the package
	// was discovered in.
	ManifestPath string `json:"manifest_path,omitempty"`
}

// PURL returns the package-url identifier for the package, following the
// pkg:type/namespace/name@version layout. Namespace and name segments are
// percent-encoded so slashes inside a namespace survive round trips.
func (p DiscoveredPackage) PURL() string {
	var b strings.Builder
	b.WriteString("pkg:")
	b.WriteString(p.Type)
	if p.Namespace != "" {
		for _, seg := range strings.Split(p.Namespace, "/") {
			b.WriteByte('/')
			b.WriteString(escapeSegment(seg))
		}
	}
	b.WriteByte('/')
	b.WriteString(escapeSegment(p.Name))
	if p.Version != "" {
		b.WriteByte('@')
		b.WriteString(url.PathEscape(p.Version))
	}
	return b.String()
}

// escapeSegment percent-encodes one namespace or name segment. The at sign
// is legal in a URL path segment but separates the version in a purl, so it
// is always encoded.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "@", "%40")
}

// PackageDependency is a dependency declared by a manifest. The referenced
// package may or may not be resolved: a pinned requirement carries the
// version, an open constraint only the range.
type PackageDependency struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`

	// PackageID links the dependency to the discovered package that
	// declares it. Zero means the dependency stands alone, tied only to
	// its manifest.
	PackageID int64 `json:"package_id,omitempty"`

	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`

	// Constraint is the declared version requirement, verbatim from the
	// manifest: "^1.2.0", ">=2", "1.4.7".
	Constraint string `json:"constraint,omitempty"`

	// Scope qualifies how the dependency is used when the ecosystem
	// distinguishes it: "dev", "test", "runtime".
	Scope string `json:"scope,omitempty"`

	// ManifestPath is the codebase-relative path of the manifest that
	// declares the dependency.
	ManifestPath string `json:"manifest_path,omitempty"`
}
