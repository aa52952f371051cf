package project

import "errors"

// ErrProjectNotFound is returned by Open when no project with the given
// name exists in the workspace database.
var ErrProjectNotFound = errors.New("project not found")
