package plugin

import "strings"

// Header represents the metadata block at the top of a plugin's main file
type Header struct {
	ID              string   `json:"id"` // "directory/file.php" or "file.php"
	Name            string   `json:"name"`
	Version         string   `json:"version,omitempty"`
	Description     string   `json:"description,omitempty"`
	Author          string   `json:"author,omitempty"`
	TextDomain      string   `json:"textDomain,omitempty"`
	RequiresPlugins []string `json:"requiresPlugins,omitempty"` // plugin directory names
}

// Dir returns the plugin directory name derived from the identifier.
// Single-file plugins use the file name without extension.
func (h Header) Dir() string {
	return DirOf(h.ID)
}

// DirOf returns the directory part of a plugin identifier
// e.g., "woocommerce/woocommerce.php" -> "woocommerce", "hello.php" -> "hello"
func DirOf(id string) string {
	if i := strings.IndexByte(id, '/'); i >= 0 {
		return id[:i]
	}
	return strings.TrimSuffix(id, ".php")
}

// IsIdentifier reports whether id has the "directory/file.php" or "file.php" form
func IsIdentifier(id string) bool {
	if !strings.HasSuffix(id, ".php") {
		return false
	}
	parts := strings.Split(id, "/")
	switch len(parts) {
	case 1:
		return parts[0] != ".php"
	case 2:
		return parts[0] != "" && parts[0] != "." && parts[0] != ".." && parts[1] != ".php"
	default:
		return false
	}
}
