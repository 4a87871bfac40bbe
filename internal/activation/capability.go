package activation

import (
	"sort"
	"strings"
)

// Capability is a permission a caller can hold
type Capability string

const (
	CapActivatePlugins Capability = "activate_plugins"
	CapInstallPlugins  Capability = "install_plugins"
	CapSwitchThemes    Capability = "switch_themes"
)

// AllCapabilities lists every known capability
var AllCapabilities = []Capability{CapActivatePlugins, CapInstallPlugins, CapSwitchThemes}

// Capabilities is the permission set of one caller
type Capabilities map[Capability]bool

// NewCapabilities builds a set from names; "*" grants everything
func NewCapabilities(names ...string) Capabilities {
	caps := make(Capabilities, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "*" {
			for _, c := range AllCapabilities {
				caps[c] = true
			}
			continue
		}
		if name != "" {
			caps[Capability(name)] = true
		}
	}
	return caps
}

// Can reports whether the set grants c
func (c Capabilities) Can(capability Capability) bool {
	return c[capability]
}

// Names returns the granted capabilities sorted by name
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(c))
	for capability, ok := range c {
		if ok {
			names = append(names, string(capability))
		}
	}
	sort.Strings(names)
	return names
}
