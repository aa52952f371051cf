package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity represents the risk level of a vulnerability finding.
// This allows sorting findings by their potential impact on a codebase.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityUnknown indicates the advisory carries no usable severity.
	SeverityUnknown Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	SeverityMedium

	// SeverityHigh indicates serious issues that should be fixed promptly.
	SeverityHigh

	// SeverityCritical indicates severe issues that likely allow full
	// compromise of the affected component.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts the string form of a severity, in any case, back
// to a Severity. Unrecognized strings map to SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return SeverityLow
	case "MEDIUM", "MODERATE":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// UnmarshalYAML accepts the severity strings found in advisory files.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode severity: %w", err)
	}
	*s = ParseSeverity(raw)
	return nil
}

// MarshalYAML writes the severity back in its string form.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}
