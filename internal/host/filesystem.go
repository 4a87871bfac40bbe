package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/catalog"
	"github.com/egoavara/formguard/internal/git"
	"github.com/egoavara/formguard/internal/plugin"
	"github.com/egoavara/formguard/internal/site"
	"github.com/egoavara/formguard/internal/theme"
)

// Site directory layout
const (
	PluginsDir = "plugins"
	ThemesDir  = "themes"
	StoreFile  = "options.db"
)

// CoreThemes are the bundled default themes, newest first
var CoreThemes = []string{
	"twentytwentyfive",
	"twentytwentyfour",
	"twentytwentythree",
	"twentytwentytwo",
	"twentytwentyone",
	"twentytwenty",
	"twentynineteen",
	"twentyseventeen",
	"twentysixteen",
	"twentyfifteen",
	"twentyfourteen",
	"twentythirteen",
	"twentytwelve",
	"twentyeleven",
	"twentyten",
}

// Options configures a Filesystem host
type Options struct {
	Root         string // site directory
	DefaultTheme string // preferred fallback theme slug
	Git          git.Client
	Logger       *slog.Logger
}

// Filesystem is a site laid out on disk:
//
//	<root>/plugins/<dir>/<file>.php
//	<root>/themes/<slug>/style.css
//	<root>/options.db
//	<root>/catalog.json
type Filesystem struct {
	root         string
	plugins      *plugin.Directory
	themes       *theme.Directory
	store        *site.Store
	git          git.Client
	defaultTheme string
	logger       *slog.Logger

	installMu sync.Mutex
}

var _ activation.HostService = (*Filesystem)(nil)

// Open opens the site at opts.Root, creating its directories when missing
func Open(opts Options) (*Filesystem, error) {
	if opts.Root == "" {
		return nil, errors.New("site root is not configured")
	}

	for _, dir := range []string{opts.Root, filepath.Join(opts.Root, PluginsDir), filepath.Join(opts.Root, ThemesDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create site directory: %w", err)
		}
	}

	store, err := site.Open(filepath.Join(opts.Root, StoreFile))
	if err != nil {
		return nil, err
	}

	gitClient := opts.Git
	if gitClient == nil {
		gitClient = git.NewClient()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Filesystem{
		root:         opts.Root,
		plugins:      plugin.NewDirectory(filepath.Join(opts.Root, PluginsDir)),
		themes:       theme.NewDirectory(filepath.Join(opts.Root, ThemesDir)),
		store:        store,
		git:          gitClient,
		defaultTheme: opts.DefaultTheme,
		logger:       logger.With("site", opts.Root),
	}, nil
}

// Close closes the options store
func (f *Filesystem) Close() error {
	return f.store.Close()
}

// Root returns the site directory
func (f *Filesystem) Root() string {
	return f.root
}

// Store returns the site options store
func (f *Filesystem) Store() *site.Store {
	return f.store
}

func (f *Filesystem) InstalledPlugins() (map[string]plugin.Header, error) {
	return f.plugins.Scan()
}

func (f *Filesystem) Metadata(id string) (plugin.Header, error) {
	return f.plugins.Read(id)
}

func (f *Filesystem) IsActive(id string) bool {
	active, err := f.store.IsPluginActive(id)
	if err != nil {
		f.logger.Error("failed to read active plugins", "error", err)
		return false
	}
	return active
}

// Activate marks an installed plugin active.
// It fails when any plugin named in the plugin's Requires Plugins header is
// missing or inactive.
func (f *Filesystem) Activate(id string) error {
	h, err := f.plugins.Read(id)
	if err != nil {
		return activation.NewError(activation.CodeActivationFailed, "Plugin file does not exist.")
	}

	if len(h.RequiresPlugins) > 0 {
		installed, err := f.plugins.Scan()
		if err != nil {
			return err
		}
		var unmet []string
		for _, dir := range h.RequiresPlugins {
			dep, ok := plugin.Resolve(installed, dir)
			if !ok || !f.IsActive(dep) {
				unmet = append(unmet, dir)
			}
		}
		if len(unmet) > 0 {
			return activation.Errorf(activation.CodeActivationFailed,
				"%s requires additional plugins: %s.", h.Name, strings.Join(unmet, ", "))
		}
	}

	if err := f.store.SetPluginsActive([]string{id}, true); err != nil {
		return fmt.Errorf("failed to activate %s: %w", id, err)
	}
	return nil
}

func (f *Filesystem) Deactivate(ids []string) error {
	if err := f.store.SetPluginsActive(ids, false); err != nil {
		return fmt.Errorf("failed to deactivate plugins: %w", err)
	}
	return nil
}

// Install fetches a plugin from the site catalog.
// ref is a plugin identifier or directory name; the identifier found after
// the fetch is returned.
func (f *Filesystem) Install(ctx context.Context, ref string) (string, error) {
	f.installMu.Lock()
	defer f.installMu.Unlock()

	dir := ref
	if plugin.IsIdentifier(ref) {
		dir = plugin.DirOf(ref)
	}

	installed, err := f.plugins.Scan()
	if err != nil {
		return "", activation.NewError(activation.CodeInstallFailed, err.Error())
	}
	if id, ok := plugin.Resolve(installed, ref); ok {
		return id, nil
	}

	m, err := catalog.Load(filepath.Join(f.root, catalog.ManifestFile))
	if err != nil {
		return "", activation.NewError(activation.CodeInstallFailed, err.Error())
	}
	src, ok := m.Find(dir)
	if !ok {
		return "", activation.Errorf(activation.CodeNotFound, "No install source for plugin %s.", dir)
	}

	dest := f.plugins.Path(dir)
	if _, err := os.Stat(dest); err == nil {
		return "", activation.Errorf(activation.CodeInstallFailed, "Destination folder already exists: %s.", dir)
	}

	f.logger.Info("installing plugin", "plugin", dir, "source", src.Source)
	switch src.Source {
	case catalog.SourceGit:
		err = f.git.Clone(ctx, src.URL, src.Ref, dest)
	case catalog.SourceDirectory:
		err = plugin.CopyDir(src.Path, dest)
	default:
		err = fmt.Errorf("unknown source type %q", src.Source)
	}
	if err != nil {
		os.RemoveAll(dest)
		var authErr *git.AuthError
		if errors.As(err, &authErr) {
			f.logger.Warn("plugin source rejected credentials", "plugin", dir, "url", authErr.URL)
		}
		return "", activation.NewError(activation.CodeInstallFailed, err.Error())
	}

	installed, err = f.plugins.Scan()
	if err != nil {
		return "", activation.NewError(activation.CodeInstallFailed, err.Error())
	}
	id, ok := plugin.Resolve(installed, ref)
	if !ok {
		os.RemoveAll(dest)
		return "", activation.Errorf(activation.CodeInstallFailed, "No valid plugins were found in %s.", dir)
	}

	f.logger.Info("plugin installed", "plugin", id)
	return id, nil
}

func (f *Filesystem) Themes() (map[string]theme.Header, error) {
	return f.themes.Scan()
}

func (f *Filesystem) ActiveTheme() (string, string) {
	stylesheet, template, err := f.store.ActiveTheme()
	if err != nil {
		f.logger.Error("failed to read active theme", "error", err)
		return "", ""
	}
	return stylesheet, template
}

// SwitchTheme makes slug the active theme. A child theme's parent must be installed.
func (f *Filesystem) SwitchTheme(slug string) error {
	h, err := f.themes.Read(slug)
	if err != nil {
		return activation.NewError(activation.CodeNotFound, "The requested theme does not exist.")
	}

	template := slug
	if h.IsChild() {
		if _, err := f.themes.Read(h.Template); err != nil {
			return activation.Errorf(activation.CodeActivationFailed, "The parent theme is missing. Please install the %q parent theme.", h.Template)
		}
		template = h.Template
	}

	if err := f.store.SetActiveTheme(slug, template); err != nil {
		return fmt.Errorf("failed to switch theme: %w", err)
	}
	f.logger.Info("theme switched", "stylesheet", slug, "template", template)
	return nil
}

// DefaultTheme returns the configured default theme when it is installed,
// else the newest installed core theme, else ""
func (f *Filesystem) DefaultTheme() string {
	themes, err := f.themes.Scan()
	if err != nil {
		return ""
	}
	if _, ok := themes[f.defaultTheme]; ok && f.defaultTheme != "" {
		return f.defaultTheme
	}
	for _, slug := range CoreThemes {
		if _, ok := themes[slug]; ok {
			return slug
		}
	}
	return ""
}
