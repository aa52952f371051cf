// Package scan inventories a project codebase: it collects file resources
// with content digests, recognizes and parses package manifests across
// ecosystems (Go modules, Maven, npm, pip, dpkg, apk), identifies the
// operating system of extracted filesystem images, and fingerprints
// directory trees.
//
// Each manifest format is handled by a Detector implementation. Detectors
// are pure parsers: they read one file and return the packages and
// dependency declarations it describes. Persistence is the caller's job.
package scan
