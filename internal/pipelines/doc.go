// Package pipelines defines the built-in analysis pipelines: codebase
// inspection, docker image analysis, vulnerability lookup, and
// deploy-to-develop mapping. Each pipeline is a thin set of step
// implementations bound to a project workspace handle; the execution
// mechanics live entirely in the pipeline package.
//
// Steps of one pipeline share state through the pipeline instance (a
// located image path, loaded advisories, accumulated relations). An
// explicit step selection that skips a producer step therefore sees that
// state empty and works with whatever the database already holds.
package pipelines
