package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// OSRelease holds the distro identification fields read from an
// os-release file.
type OSRelease struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	VersionID  string `json:"version_id,omitempty"`
	PrettyName string `json:"pretty_name,omitempty"`
}

// ParseOSRelease reads the newline-delimited KEY=value format of
// os-release(5). Unknown keys are ignored; values may be quoted.
func ParseOSRelease(r io.Reader) (*OSRelease, error) {
	osr := &OSRelease{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			osr.ID = value
		case "NAME":
			osr.Name = value
		case "VERSION_ID":
			osr.VersionID = value
		case "PRETTY_NAME":
			osr.PrettyName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read os-release: %w", err)
	}
	return osr, nil
}

// DetectOS locates and parses the os-release file under root, trying the
// standard locations in order. It returns nil when the codebase carries
// none, which is the normal case for application codebases.
func DetectOS(root string) (*OSRelease, error) {
	for _, candidate := range []string{"etc/os-release", "usr/lib/os-release"} {
		file, err := os.Open(filepath.Join(root, filepath.FromSlash(candidate)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		osr, parseErr := ParseOSRelease(file)
		file.Close()
		return osr, parseErr
	}
	return nil, nil
}
