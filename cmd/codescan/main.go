// Package main provides the entry point for the codescan CLI.
//
// Codescan inventories codebases and container images: it records every
// file, detects application and system packages, maps deployed artifacts
// back to their sources, and matches the inventory against known
// vulnerability advisories. Analysis is organized as pipelines executed
// against persisted project workspaces.
//
// Usage:
//
//	codescan create <project> --input app.tar.gz
//	codescan run inspect_codebase <project>
//	codescan results <project>
//
// See --help for all available options.
package main

// main is the entry point for codescan.
func main() {
	Execute()
}
