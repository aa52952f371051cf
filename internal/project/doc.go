// Package project manages per-project workspace directories and ties them
// to the shared workspace database.
//
// Every project owns four directories under <workspace>/projects/<slug>:
//   - input: files registered for analysis, never modified
//   - codebase: the working tree pipeline steps read and extract into
//   - output: generated reports
//   - tmp: scratch space, reset between runs
//
// Design decision: Pipeline factories receive a *Project rather than
// individual paths and handles because:
// 1. Steps need different subsets of the workspace; one handle covers all
// 2. New pipelines get storage and logging without signature churn
// 3. Tests can stand up a complete project in a temporary directory
package project
