package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoWorkspace is returned when the workspace directory is empty.
	// Every command needs the workspace to locate the database and the
	// project directory trees.
	ErrNoWorkspace = errors.New("no workspace directory: provide --workspace or leave the default")

	// ErrInvalidConcurrency is returned when the worker concurrency is not
	// positive. Zero concurrency would mean queued runs never execute.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidPollInterval is returned when the queue poll interval is
	// not positive. A zero interval would busy-loop on the database.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidScanWorkers is returned when the collection worker count is
	// not positive. Zero workers would stall resource collection.
	ErrInvalidScanWorkers = errors.New("invalid scan workers: must be positive")

	// ErrInvalidMaxFileSize is returned when the checksum size limit is
	// negative. Use 0 to checksum files of any size.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be non-negative")

	// ErrInvalidMaxExtractSize is returned when the layer extraction cap is
	// negative. Use 0 to disable the cap.
	ErrInvalidMaxExtractSize = errors.New("invalid max extract size: must be non-negative")
)
