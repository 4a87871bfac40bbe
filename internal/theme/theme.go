package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/egoavara/formguard/internal/plugin"
)

// StylesheetFile is the file carrying a theme's header
const StylesheetFile = "style.css"

// Header represents the metadata block of a theme's style.css
type Header struct {
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Version         string   `json:"version,omitempty"`
	Template        string   `json:"template,omitempty"` // parent theme slug for child themes
	RequiresPlugins []string `json:"requiresPlugins,omitempty"`
}

// IsChild reports whether the theme is a child theme
func (h Header) IsChild() bool {
	return h.Template != "" && h.Template != h.Slug
}

// Directory reads themes installed under a site's theme directory
type Directory struct {
	root string
}

// NewDirectory returns a Directory rooted at path (e.g. <site>/themes)
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Scan returns every installed theme keyed by slug
func (d *Directory) Scan() (map[string]Header, error) {
	themes := make(map[string]Header)

	entries, err := os.ReadDir(d.root)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return nil, fmt.Errorf("failed to read theme directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		h, err := d.Read(entry.Name())
		if err != nil {
			continue
		}
		themes[h.Slug] = h
	}
	return themes, nil
}

// Read parses the style.css header of one theme
func (d *Directory) Read(slug string) (Header, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return Header{}, fmt.Errorf("invalid theme slug: %q", slug)
	}

	f, err := os.Open(filepath.Join(d.root, slug, StylesheetFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Header{}, fmt.Errorf("theme not installed: %s", slug)
		}
		return Header{}, err
	}
	defer f.Close()

	fields := plugin.ReadFields(f, "Theme Name", "Version", "Template", "Requires Plugins")
	name := fields["Theme Name"]
	if name == "" {
		return Header{}, fmt.Errorf("theme has no valid header: %s", slug)
	}

	return Header{
		Slug:            slug,
		Name:            name,
		Version:         fields["Version"],
		Template:        fields["Template"],
		RequiresPlugins: plugin.ParseRequires(fields["Requires Plugins"]),
	}, nil
}
