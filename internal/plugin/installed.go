package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Directory reads plugins installed under a site's plugin directory
type Directory struct {
	root string
}

// NewDirectory returns a Directory rooted at path (e.g. <site>/plugins)
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Root returns the plugin directory path
func (d *Directory) Root() string {
	return d.root
}

// Scan returns every installed plugin keyed by identifier.
// A plugin is a ".php" file carrying a "Plugin Name" header, either directly in
// the root or one level below it. A missing root yields an empty map.
func (d *Directory) Scan() (map[string]Header, error) {
	installed := make(map[string]Header)

	entries, err := os.ReadDir(d.root)
	if err != nil {
		if os.IsNotExist(err) {
			return installed, nil
		}
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		if !entry.IsDir() {
			if strings.HasSuffix(name, ".php") {
				d.add(installed, name)
			}
			continue
		}

		files, err := os.ReadDir(filepath.Join(d.root, name))
		if err != nil {
			continue // unreadable plugin folders are skipped
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".php") {
				continue
			}
			d.add(installed, name+"/"+f.Name())
		}
	}

	return installed, nil
}

// Read returns the header of a single plugin by identifier
func (d *Directory) Read(id string) (Header, error) {
	if !IsIdentifier(id) {
		return Header{}, fmt.Errorf("invalid plugin identifier: %s", id)
	}

	h, ok, err := ReadHeader(filepath.Join(d.root, filepath.FromSlash(id)))
	if err != nil {
		if os.IsNotExist(err) {
			return Header{}, fmt.Errorf("plugin not installed: %s", id)
		}
		return Header{}, err
	}
	if !ok {
		return Header{}, fmt.Errorf("plugin file has no valid header: %s", id)
	}
	h.ID = id
	return h, nil
}

// Path returns the filesystem directory a plugin directory name maps to
func (d *Directory) Path(dir string) string {
	return filepath.Join(d.root, dir)
}

func (d *Directory) add(installed map[string]Header, id string) {
	h, ok, err := ReadHeader(filepath.Join(d.root, filepath.FromSlash(id)))
	if err != nil || !ok {
		return
	}
	h.ID = id
	installed[id] = h
}

// Resolve maps a plugin directory name (or full identifier) to an installed
// identifier. Candidates are checked in sorted order so the result is stable
// when a directory holds more than one plugin file.
func Resolve(installed map[string]Header, ref string) (string, bool) {
	if strings.Contains(ref, "/") {
		_, ok := installed[ref]
		return ref, ok
	}
	if strings.HasSuffix(ref, ".php") {
		_, ok := installed[ref]
		return ref, ok
	}

	ids := make([]string, 0, len(installed))
	for id := range installed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	prefix := ref + "/"
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			return id, true
		}
	}

	if _, ok := installed[ref+".php"]; ok {
		return ref + ".php", true
	}
	return "", false
}
