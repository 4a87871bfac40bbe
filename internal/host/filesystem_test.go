package host

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/catalog"
	"github.com/egoavara/formguard/internal/modules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func pluginSource(name string, requires string) string {
	src := "<?php\n/**\n * Plugin Name: " + name + "\n"
	if requires != "" {
		src += " * Requires Plugins: " + requires + "\n"
	}
	return src + " */\n"
}

func openSite(t *testing.T, defaultTheme string) *Filesystem {
	t.Helper()
	fs, err := Open(Options{
		Root:         t.TempDir(),
		DefaultTheme: defaultTheme,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func (f *Filesystem) addPlugin(t *testing.T, id, name, requires string) {
	t.Helper()
	writeFile(t, filepath.Join(f.root, PluginsDir, filepath.FromSlash(id)), pluginSource(name, requires))
}

func (f *Filesystem) addTheme(t *testing.T, slug, name, template string) {
	t.Helper()
	css := "/*\nTheme Name: " + name + "\n"
	if template != "" {
		css += "Template: " + template + "\n"
	}
	writeFile(t, filepath.Join(f.root, ThemesDir, slug, "style.css"), css+"*/\n")
}

func TestOpen_CreatesLayout(t *testing.T) {
	fs := openSite(t, "")
	assert.DirExists(t, filepath.Join(fs.Root(), PluginsDir))
	assert.DirExists(t, filepath.Join(fs.Root(), ThemesDir))
	assert.FileExists(t, filepath.Join(fs.Root(), StoreFile))
}

func TestOpen_RequiresRoot(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}

func TestActivate_RequiresActiveDependencies(t *testing.T) {
	fs := openSite(t, "")
	fs.addPlugin(t, "woocommerce/woocommerce.php", "WooCommerce", "")
	fs.addPlugin(t, "woocommerce-wishlists/woocommerce-wishlists.php", "WooCommerce Wishlists", "woocommerce")

	err := fs.Activate("woocommerce-wishlists/woocommerce-wishlists.php")
	require.Error(t, err)
	assert.Equal(t, activation.CodeActivationFailed, activation.CodeOf(err))
	assert.Equal(t, "WooCommerce Wishlists requires additional plugins: woocommerce.", err.Error())

	require.NoError(t, fs.Activate("woocommerce/woocommerce.php"))
	require.NoError(t, fs.Activate("woocommerce-wishlists/woocommerce-wishlists.php"))
	assert.True(t, fs.IsActive("woocommerce-wishlists/woocommerce-wishlists.php"))

	require.NoError(t, fs.Deactivate([]string{"woocommerce/woocommerce.php", "unknown/unknown.php"}))
	assert.False(t, fs.IsActive("woocommerce/woocommerce.php"))
	assert.True(t, fs.IsActive("woocommerce-wishlists/woocommerce-wishlists.php"))
}

func TestActivate_NotInstalled(t *testing.T) {
	fs := openSite(t, "")
	err := fs.Activate("missing/missing.php")
	assert.Equal(t, activation.CodeActivationFailed, activation.CodeOf(err))
}

func writeCatalog(t *testing.T, fs *Filesystem, m *catalog.Manifest) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	writeFile(t, filepath.Join(fs.Root(), catalog.ManifestFile), string(data))
}

func TestInstall_FromDirectory(t *testing.T) {
	fs := openSite(t, "")
	pkg := filepath.Join(t.TempDir(), "wishlists")
	writeFile(t, filepath.Join(pkg, "woocommerce-wishlists.php"), pluginSource("WooCommerce Wishlists", ""))

	m := catalog.NewManifest()
	m.Plugins["woocommerce-wishlists"] = catalog.Source{Source: catalog.SourceDirectory, Path: pkg}
	writeCatalog(t, fs, m)

	id, err := fs.Install(context.Background(), "woocommerce-wishlists")
	require.NoError(t, err)
	assert.Equal(t, "woocommerce-wishlists/woocommerce-wishlists.php", id)

	installed, err := fs.InstalledPlugins()
	require.NoError(t, err)
	assert.Contains(t, installed, id)

	again, err := fs.Install(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestInstall_NoSource(t *testing.T) {
	fs := openSite(t, "")
	_, err := fs.Install(context.Background(), "woocommerce/woocommerce.php")
	require.Error(t, err)
	assert.Equal(t, activation.CodeNotFound, activation.CodeOf(err))
}

func TestInstall_NoPluginInPackage(t *testing.T) {
	fs := openSite(t, "")
	pkg := t.TempDir()
	writeFile(t, filepath.Join(pkg, "readme.txt"), "nothing here")

	m := catalog.NewManifest()
	m.Plugins["empty"] = catalog.Source{Source: catalog.SourceDirectory, Path: pkg}
	writeCatalog(t, fs, m)

	_, err := fs.Install(context.Background(), "empty")
	require.Error(t, err)
	assert.Equal(t, activation.CodeInstallFailed, activation.CodeOf(err))
	assert.NoDirExists(t, filepath.Join(fs.Root(), PluginsDir, "empty"))
}

func TestSwitchTheme(t *testing.T) {
	fs := openSite(t, "")
	fs.addTheme(t, "Avada", "Avada", "")
	fs.addTheme(t, "Avada-Child", "Avada Child", "Avada")
	fs.addTheme(t, "orphan", "Orphan", "missing-parent")

	require.NoError(t, fs.SwitchTheme("Avada-Child"))
	stylesheet, template := fs.ActiveTheme()
	assert.Equal(t, "Avada-Child", stylesheet)
	assert.Equal(t, "Avada", template)

	err := fs.SwitchTheme("orphan")
	assert.Equal(t, activation.CodeActivationFailed, activation.CodeOf(err))

	err = fs.SwitchTheme("Divi")
	assert.Equal(t, activation.CodeNotFound, activation.CodeOf(err))
}

func TestDefaultTheme(t *testing.T) {
	fs := openSite(t, "flatsome")
	assert.Equal(t, "", fs.DefaultTheme())

	fs.addTheme(t, "twentytwentyone", "Twenty Twenty-One", "")
	fs.addTheme(t, "twentytwentythree", "Twenty Twenty-Three", "")
	assert.Equal(t, "twentytwentythree", fs.DefaultTheme())

	fs.addTheme(t, "flatsome", "Flatsome", "")
	assert.Equal(t, "flatsome", fs.DefaultTheme())
}

func TestSession_OnFilesystem(t *testing.T) {
	fs := openSite(t, "")
	fs.addPlugin(t, "woocommerce/woocommerce.php", "WooCommerce", "")
	fs.addPlugin(t, "woocommerce-wishlists/woocommerce-wishlists.php", "WooCommerce Wishlists", "woocommerce")

	registry, err := modules.Builtin()
	require.NoError(t, err)

	s := activation.NewSession(activation.Options{
		Host:         fs,
		Registry:     registry,
		Capabilities: activation.NewCapabilities("*"),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	resp, err := s.Process(context.Background(), activation.Request{
		Activate: true,
		Entity:   modules.EntityPlugin,
		Status:   "woocommerce_wishlists_status",
	})
	require.NoError(t, err)
	assert.True(t, resp.Stati["woocommerce_wishlists_status"])
	assert.True(t, resp.Stati["woocommerce_status"])

	active, err := fs.Store().ActivePlugins()
	require.NoError(t, err)
	assert.Equal(t, []string{"woocommerce-wishlists/woocommerce-wishlists.php", "woocommerce/woocommerce.php"}, active)
}
