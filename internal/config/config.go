package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for responsive local analysis runs; heavy
// multi-project deployments can raise them via flags or the config file.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "codescan"

	// DefaultConcurrency is the number of runs a worker executes at once.
	// Pipeline steps are already internally parallel where it pays off, so
	// a small number of concurrent runs keeps disk and CPU contention low.
	DefaultConcurrency = 2

	// DefaultPollInterval is how often the worker checks the queue for new
	// runs. Two seconds keeps queued runs snappy without hammering SQLite.
	DefaultPollInterval = 2 * time.Second

	// DefaultScanWorkers is the number of goroutines hashing files during
	// resource collection. Hashing is I/O bound, so a moderate fan-out
	// outpaces the walk without starving other runs.
	DefaultScanWorkers = 8

	// DefaultMaxFileSize limits how large a single file may be before
	// collection skips its checksum. 256MB covers almost every source or
	// artifact file while bounding memory-mapped reads on pathological
	// inputs.
	DefaultMaxFileSize = 256 * 1024 * 1024 // 256MB

	// DefaultMaxExtractSize caps the total bytes extracted from one image
	// layer. 4GB tolerates large base images while stopping decompression
	// bombs from filling the disk.
	DefaultMaxExtractSize = 4 * 1024 * 1024 * 1024 // 4GB
)

// Config holds all configuration options for codescan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// WorkspaceDir is the directory holding the shared database and the
	// per-project directory trees. Defaults to the XDG data directory.
	WorkspaceDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Concurrency is the number of runs the worker executes at once.
	Concurrency int

	// PollInterval is how often the worker checks for queued runs.
	PollInterval time.Duration

	// ScanWorkers is the number of goroutines hashing files during
	// resource collection.
	ScanWorkers int

	// MaxFileSize is the largest file, in bytes, that collection will
	// checksum. Larger files are recorded without a digest.
	MaxFileSize int64

	// MaxExtractSize caps the total bytes extracted from one image
	// archive, layers included.
	MaxExtractSize int64

	// AdvisoryDir is the directory of YAML advisory files used by the
	// vulnerability pipeline. When empty, the workspace's advisories
	// directory is used.
	AdvisoryDir string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .codescan.yaml in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// Defaults holds per-pipeline selection defaults loaded from the
	// config file. Populated by LoadFile.
	Defaults *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., the workspace
// directory and worker tuning). This also serves as documentation of what
// the defaults are.
func NewConfig() *Config {
	return &Config{
		WorkspaceDir:   XDGDataDir(),
		Concurrency:    DefaultConcurrency,
		PollInterval:   DefaultPollInterval,
		ScanWorkers:    DefaultScanWorkers,
		MaxFileSize:    DefaultMaxFileSize,
		MaxExtractSize: DefaultMaxExtractSize,
	}
}

// XDGDataDir returns the XDG data directory for codescan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/codescan
// On macOS: ~/Library/Application Support/codescan
// On Windows: %LOCALAPPDATA%\codescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for codescan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/codescan
// On macOS: ~/Library/Application Support/codescan
// On Windows: %APPDATA%\codescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for codescan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/codescan
// On macOS: ~/Library/Caches/codescan
// On Windows: %LOCALAPPDATA%\codescan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any command runs.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.WorkspaceDir == "" {
		return ErrNoWorkspace
	}

	// Concurrency must be positive; zero would mean no runs execute
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// PollInterval must be positive to avoid a busy loop on the database
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	// ScanWorkers must be positive; zero would stall collection
	if c.ScanWorkers <= 0 {
		return ErrInvalidScanWorkers
	}

	if c.MaxFileSize < 0 {
		return ErrInvalidMaxFileSize
	}

	if c.MaxExtractSize < 0 {
		return ErrInvalidMaxExtractSize
	}

	return nil
}
