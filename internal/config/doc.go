// Package config provides configuration structures and utilities for
// codescan. It defines the workspace location, worker tuning knobs, and
// per-pipeline selection defaults loaded from the configuration file.
package config
