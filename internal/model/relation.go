package model

// RelationKind names the evidence that paired a deployed resource with a
// development source.
type RelationKind int

const (
	// RelationChecksum means both sides carry the same SHA256 digest.
	RelationChecksum RelationKind = iota

	// RelationPathSuffix means the paths share a long trailing segment
	// sequence.
	RelationPathSuffix

	// RelationJavaSource pairs a compiled class file with the Java source
	// that produces it.
	RelationJavaSource

	// RelationJavaScriptSource pairs a minified script or source map with
	// its unminified source.
	RelationJavaScriptSource
)

// String returns the stable lowercase form of the relation kind.
func (k RelationKind) String() string {
	switch k {
	case RelationChecksum:
		return "checksum"
	case RelationPathSuffix:
		return "path_suffix"
	case RelationJavaSource:
		return "java_source"
	case RelationJavaScriptSource:
		return "javascript_source"
	default:
		return "unknown"
	}
}

// ParseRelationKind converts the persisted string form back to a
// RelationKind. Unknown strings map to RelationChecksum.
func ParseRelationKind(s string) RelationKind {
	switch s {
	case "path_suffix":
		return RelationPathSuffix
	case "java_source":
		return RelationJavaSource
	case "javascript_source":
		return RelationJavaScriptSource
	default:
		return RelationChecksum
	}
}

// CodebaseRelation links a deployed resource to the development source it
// was built from, with a confidence score in (0, 1].
type CodebaseRelation struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`

	// DeployedPath is the resource under the "to" side, SourcePath the
	// matched resource under the "from" side.
	DeployedPath string `json:"deployed_path"`
	SourcePath   string `json:"source_path"`

	Kind       RelationKind `json:"kind"`
	Confidence float64      `json:"confidence"`
}
