package database

import "errors"

// ErrDuplicateProject is returned when creating a project whose name is
// already taken. Project names are unique across the workspace because the
// name is how every command addresses a project.
var ErrDuplicateProject = errors.New("project already exists")
