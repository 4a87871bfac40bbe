package activation

import (
	"context"

	"github.com/egoavara/formguard/internal/plugin"
	"github.com/egoavara/formguard/internal/theme"
)

// HostService is the set of site primitives the sequencer depends on.
// Failing methods may return an *ActivationError to choose the code stored
// on the node; other errors are recorded with the default code of the step.
type HostService interface {
	// InstalledPlugins returns every installed plugin keyed by identifier
	InstalledPlugins() (map[string]plugin.Header, error)
	// Metadata reads the header of one installed plugin
	Metadata(id string) (plugin.Header, error)
	IsActive(id string) bool
	Activate(id string) error
	Deactivate(ids []string) error
	// Install fetches a plugin by identifier or directory name and returns
	// the identifier it was installed as
	Install(ctx context.Context, ref string) (string, error)

	// Themes returns every installed theme keyed by slug
	Themes() (map[string]theme.Header, error)
	ActiveTheme() (stylesheet, template string)
	SwitchTheme(slug string) error
	// DefaultTheme returns the slug used when no theme is requested, or ""
	DefaultTheme() string
}
