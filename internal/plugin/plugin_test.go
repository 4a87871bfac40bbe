package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlugin(t *testing.T, root, id, header string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(id))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(header), 0644))
}

func TestParseHeader(t *testing.T) {
	src := `<?php
/**
 * Plugin Name: Some Requiring Wishlist
 * Plugin URI: https://example.com
 * Description: Depends on: wishlists.
 * Version: 1.2.0
 * Author: Example Inc.
 * Author URI: https://example.com/author
 * Text Domain: some-requiring-wishlist
 * Requires Plugins: woocommerce-wishlists
 */
`
	h, ok := ParseHeader(strings.NewReader(src))
	require.True(t, ok)
	assert.Equal(t, "Some Requiring Wishlist", h.Name)
	assert.Equal(t, "1.2.0", h.Version)
	assert.Equal(t, "Depends on: wishlists.", h.Description)
	assert.Equal(t, "Example Inc.", h.Author)
	assert.Equal(t, "some-requiring-wishlist", h.TextDomain)
	assert.Equal(t, []string{"woocommerce-wishlists"}, h.RequiresPlugins)
}

func TestParseHeader_NoPluginName(t *testing.T) {
	_, ok := ParseHeader(strings.NewReader("<?php\n// helper file\nfunction foo() {}\n"))
	assert.False(t, ok)
}

func TestParseHeader_SingleLineComment(t *testing.T) {
	h, ok := ParseHeader(strings.NewReader("<?php /* Plugin Name: Hello Dolly */\n"))
	require.True(t, ok)
	assert.Equal(t, "Hello Dolly", h.Name)
}

func TestParseRequires(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"woocommerce", []string{"woocommerce"}},
		{"woocommerce, elementor", []string{"woocommerce", "elementor"}},
		{"  a,b  c\td,,a ", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRequires(tt.in), "input %q", tt.in)
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("woocommerce/woocommerce.php"))
	assert.True(t, IsIdentifier("hello.php"))
	assert.False(t, IsIdentifier("woocommerce"))
	assert.False(t, IsIdentifier("a/b/c.php"))
	assert.False(t, IsIdentifier("../x.php"))
	assert.Equal(t, "woocommerce", DirOf("woocommerce/woocommerce.php"))
	assert.Equal(t, "hello", DirOf("hello.php"))
}

func TestDirectory_Scan(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "woocommerce/woocommerce.php", "<?php\n/* Plugin Name: WooCommerce */\n")
	writePlugin(t, root, "woocommerce/includes.php", "<?php\n// not a plugin\n")
	writePlugin(t, root, "hello.php", "<?php\n/* Plugin Name: Hello Dolly */\n")
	writePlugin(t, root, "readme.txt", "Plugin Name: nope")

	installed, err := NewDirectory(root).Scan()
	require.NoError(t, err)
	require.Len(t, installed, 2)
	assert.Equal(t, "WooCommerce", installed["woocommerce/woocommerce.php"].Name)
	assert.Equal(t, "hello.php", installed["hello.php"].ID)
}

func TestDirectory_ScanMissingRoot(t *testing.T) {
	installed, err := NewDirectory(filepath.Join(t.TempDir(), "missing")).Scan()
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestDirectory_Read(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "a/a.php", "<?php\n/* Plugin Name: A\nRequires Plugins: b */\n")

	d := NewDirectory(root)
	h, err := d.Read("a/a.php")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, h.RequiresPlugins)

	_, err = d.Read("missing/missing.php")
	assert.Error(t, err)
	_, err = d.Read("missing")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	installed := map[string]Header{
		"acf-extended/acf-extended.php": {ID: "acf-extended/acf-extended.php"},
		"multi/b.php":                   {ID: "multi/b.php"},
		"multi/a.php":                   {ID: "multi/a.php"},
		"hello.php":                     {ID: "hello.php"},
	}

	id, ok := Resolve(installed, "acf-extended")
	require.True(t, ok)
	assert.Equal(t, "acf-extended/acf-extended.php", id)

	id, ok = Resolve(installed, "multi")
	require.True(t, ok)
	assert.Equal(t, "multi/a.php", id)

	id, ok = Resolve(installed, "hello")
	require.True(t, ok)
	assert.Equal(t, "hello.php", id)

	_, ok = Resolve(installed, "woocommerce")
	assert.False(t, ok)

	_, ok = Resolve(installed, "woocommerce/woocommerce.php")
	assert.False(t, ok)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	writePlugin(t, src, "a.php", "<?php\n/* Plugin Name: A */\n")
	writePlugin(t, src, "inc/b.php", "b")
	writePlugin(t, src, ".git/HEAD", "ref")

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDir(src, dst))

	assert.FileExists(t, filepath.Join(dst, "a.php"))
	assert.FileExists(t, filepath.Join(dst, "inc", "b.php"))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))
}
