package model

import (
	"strings"
	"time"
	"unicode"
)

// Project is a named analysis workspace. Every pipeline run, collected
// resource, and discovered package belongs to exactly one project.
type Project struct {
	// ID is the project's UUID, assigned at creation.
	ID string `json:"id"`

	// Name is the unique human-chosen project name.
	Name string `json:"name"`

	// Slug is the filesystem-safe form of Name, used as the project's
	// directory name inside the workspace.
	Slug string `json:"slug"`

	// CreatedAt is when the project was created.
	CreatedAt time.Time `json:"created_at"`
}

// Slugify converts a project name to its filesystem-safe slug: lowercase
// letters, digits, and single hyphens. Everything else collapses to a
// hyphen so distinct names can still collide; callers rely on the unique
// name, not the slug, for identity.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading hyphens
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
