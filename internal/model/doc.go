// Package model defines the core data structures used throughout codescan.
//
// This package contains the following main types:
//   - Project: A named analysis workspace with its own inputs and results
//   - Run: One execution attempt of a pipeline against a project
//   - CodebaseResource: A file collected from the project codebase
//   - DiscoveredPackage / PackageDependency: The software inventory
//   - CodebaseRelation: A deployed-to-source mapping between resources
//   - Advisory / VulnerabilityFinding: Known-vulnerability data and matches
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (database, scan, vuln, report)
// need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
