package model

// ResourceType distinguishes the kinds of filesystem entries recorded as
// codebase resources.
type ResourceType int

const (
	// ResourceFile is a regular file.
	ResourceFile ResourceType = iota

	// ResourceSymlink is a symbolic link. Links are recorded but never
	// followed during collection.
	ResourceSymlink
)

// String returns the stable lowercase form of the resource type.
func (t ResourceType) String() string {
	switch t {
	case ResourceFile:
		return "file"
	case ResourceSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// ParseResourceType converts the persisted string form back to a
// ResourceType. Unknown strings map to ResourceFile.
func ParseResourceType(s string) ResourceType {
	if s == "symlink" {
		return ResourceSymlink
	}
	return ResourceFile
}

// Tags that mark which side of a deploy-to-develop comparison a resource
// belongs to. Resources collected from codebase/to are the deployed
// artifacts; resources from codebase/from are the development sources.
const (
	TagFrom = "from"
	TagTo   = "to"
)

// CodebaseResource is one file collected from a project codebase,
// identified by its path relative to the codebase root.
type CodebaseResource struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`

	// Path is the slash-separated path relative to the codebase root.
	Path string `json:"path"`

	// Type is file or symlink.
	Type ResourceType `json:"type"`

	// Name is the base name and Extension its lowercase extension
	// including the dot, empty when the name has none.
	Name      string `json:"name"`
	Extension string `json:"extension,omitempty"`

	// Size is the file size in bytes; zero for symlinks.
	Size int64 `json:"size"`

	// SHA256 is the hex digest of the file content; empty for symlinks.
	SHA256 string `json:"sha256,omitempty"`

	// MimeType is the detected media type, empty when detection failed.
	MimeType string `json:"mime_type,omitempty"`

	// Tag marks the comparison side ("from", "to") when the resource sits
	// under one of the tagged top-level directories, empty otherwise.
	Tag string `json:"tag,omitempty"`
}
