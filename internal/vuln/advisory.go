// Package vuln loads vulnerability advisories and matches them against
// discovered packages. Advisories are plain YAML files so a project can
// ship its own feed snapshot without talking to a network service.
package vuln

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codescan-dev/codescan/internal/model"
)

// LoadAdvisories reads every .yml/.yaml file under dir, recursively. A
// file may hold either a single advisory document or a list of them.
func LoadAdvisories(dir string) ([]model.Advisory, error) {
	var advisories []model.Advisory
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}

		loaded, err := loadAdvisoryFile(path)
		if err != nil {
			return err
		}
		advisories = append(advisories, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load advisories: %w", err)
	}
	return advisories, nil
}

func loadAdvisoryFile(path string) ([]model.Advisory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []model.Advisory
	if err := yaml.Unmarshal(data, &list); err != nil {
		var single model.Advisory
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		list = []model.Advisory{single}
	}

	for _, adv := range list {
		if adv.ID == "" || adv.Package.Name == "" {
			return nil, fmt.Errorf("%s: advisory needs an id and a package name", path)
		}
	}
	return list, nil
}
