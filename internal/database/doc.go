// Package database provides SQLite-based storage for codescan workspaces.
//
// This package implements the Workspace, which stores:
//   - Projects and the runs executed against them
//   - Per-step timings kept across runs for duration statistics
//   - The inventory pipelines produce: resources, packages, dependencies,
//     deploy-to-source relations, and vulnerability findings
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
