package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ManifestFile is the catalog filename inside a site directory
const ManifestFile = "catalog.json"

// Load loads a catalog manifest. A missing file yields an empty catalog.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if m.Plugins == nil {
		m.Plugins = make(map[string]Source)
	}

	// relative directory sources are resolved against the catalog file
	base := filepath.Dir(path)
	for dir, src := range m.Plugins {
		if src.Source == SourceDirectory && src.Path != "" && !filepath.IsAbs(src.Path) {
			src.Path = filepath.Join(base, src.Path)
			m.Plugins[dir] = src
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every source has a known type and a location
func (m *Manifest) Validate() error {
	for _, dir := range m.Dirs() {
		src := m.Plugins[dir]
		switch src.Source {
		case SourceGit:
			if src.URL == "" {
				return fmt.Errorf("catalog: plugin %q: git source requires url", dir)
			}
		case SourceDirectory:
			if src.Path == "" {
				return fmt.Errorf("catalog: plugin %q: directory source requires path", dir)
			}
		default:
			return fmt.Errorf("catalog: plugin %q: unknown source type %q", dir, src.Source)
		}
	}
	return nil
}

// Find returns the install source for a plugin directory name
func (m *Manifest) Find(dir string) (Source, bool) {
	src, ok := m.Plugins[dir]
	return src, ok
}

// Dirs returns the catalogued plugin directory names in sorted order
func (m *Manifest) Dirs() []string {
	dirs := make([]string, 0, len(m.Plugins))
	for dir := range m.Plugins {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
