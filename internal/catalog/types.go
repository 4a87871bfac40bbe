package catalog

// Source types for install sources
const (
	SourceGit       = "git"
	SourceDirectory = "directory"
)

// Source describes where a plugin package can be installed from
type Source struct {
	Source string `json:"source"`           // "git" or "directory"
	URL    string `json:"url,omitempty"`    // git URL
	Path   string `json:"path,omitempty"`   // local directory
	Ref    string `json:"ref,omitempty"`    // optional branch or tag for git sources
	Name   string `json:"name,omitempty"`   // display name shown before the package is installed
}

// IsRemote returns true if the source has to be fetched over the network
func (s Source) IsRemote() bool {
	return s.Source == SourceGit
}

// Manifest represents the catalog.json structure
type Manifest struct {
	Version int               `json:"version"`
	Plugins map[string]Source `json:"plugins"` // keyed by plugin directory name
}

// NewManifest creates an empty Manifest
func NewManifest() *Manifest {
	return &Manifest{
		Version: 1,
		Plugins: make(map[string]Source),
	}
}
