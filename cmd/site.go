package cmd

import (
	"log/slog"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/config"
	"github.com/egoavara/formguard/internal/host"
	"github.com/egoavara/formguard/internal/modules"
)

// openSite opens the configured site and the integration registry.
// The caller closes the returned host.
func openSite() (*host.Filesystem, *modules.Registry, error) {
	cfg := config.Get()

	root := cfg.Site.Root
	if siteRoot != "" {
		root = siteRoot
	}

	registry, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	site, err := host.Open(host.Options{
		Root:         root,
		DefaultTheme: cfg.Site.DefaultTheme,
		Logger:       slog.Default(),
	})
	if err != nil {
		return nil, nil, err
	}
	return site, registry, nil
}

// loadRegistry returns the builtin integrations merged with the configured overrides
func loadRegistry() (*modules.Registry, error) {
	return modules.Load(config.Get().Registry.Overrides)
}

// newSession creates a session for the local operator, who holds every capability
func newSession(site *host.Filesystem, registry *modules.Registry) *activation.Session {
	return activation.NewSession(activation.Options{
		Host:         site,
		Registry:     registry,
		Capabilities: activation.NewCapabilities("*"),
		AllowInstall: config.Get().Site.AllowInstall,
		Logger:       slog.Default(),
	})
}
