package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)
	require.Greater(t, r.Len(), 10)

	acfe, ok := r.Get("acfe_status")
	require.True(t, ok)
	assert.Equal(t, EntityPlugin, acfe.Entity)
	assert.Equal(t, []string{"acf-extended-pro/acf-extended.php", "acf-extended/acf-extended.php"}, acfe.Plugins)

	avada, ok := r.Get("avada_status")
	require.True(t, ok)
	assert.Equal(t, EntityTheme, avada.Entity)
	assert.Equal(t, "Avada", avada.Theme)

	woo, ok := r.ByPlugin("woocommerce/woocommerce.php")
	require.True(t, ok)
	assert.Equal(t, "WooCommerce", woo.Name)

	_, ok = r.ByPlugin("unknown/unknown.php")
	assert.False(t, ok)
}

func TestAll_Sorted(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	all := r.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Status, all[i].Status)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		item Integration
		want string
	}{
		{"no status", Integration{Name: "X", Entity: EntityPlugin, Plugins: []string{"x/x.php"}}, "status is required"},
		{"bad entity", Integration{Status: "x", Name: "X", Entity: "widget"}, "unknown entity"},
		{"plugin without plugins", Integration{Status: "x", Name: "X", Entity: EntityPlugin}, "at least one plugin"},
		{"theme without theme", Integration{Status: "x", Name: "X", Entity: EntityTheme}, "needs a theme"},
		{"bad identifier", Integration{Status: "x", Name: "X", Entity: EntityPlugin, Plugins: []string{"x"}}, "invalid plugin identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Integration{tt.item})
			assert.ErrorContains(t, err, tt.want)
		})
	}

	dup := Integration{Status: "x", Name: "X", Entity: EntityPlugin, Plugins: []string{"x/x.php"}}
	_, err := New([]Integration{dup, dup})
	assert.ErrorContains(t, err, "defined twice")
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "integrations.yaml")
	data := `integrations:
  - status: cf7_status
    name: Contact Form 7 (custom)
    entity: plugin
    plugins: [contact-form-7/wp-contact-form-7.php]
  - status: some_requiring_wishlist_status
    name: Some Requiring Wishlist
    entity: plugin
    plugins: [some-requiring-wishlist/some-requiring-wishlist.php]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	builtin, err := Builtin()
	require.NoError(t, err)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, builtin.Len()+1, r.Len())

	cf7, ok := r.Get("cf7_status")
	require.True(t, ok)
	assert.Equal(t, "Contact Form 7 (custom)", cf7.Name)

	_, ok = r.Get("some_requiring_wishlist_status")
	assert.True(t, ok)
}

func TestLoad_MissingOverride(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Positive(t, r.Len())
}

func TestByPlugin_IgnoresThemeIntegrations(t *testing.T) {
	r, err := Builtin()
	require.NoError(t, err)

	_, ok := r.ByPlugin("fusion-builder/fusion-builder.php")
	assert.False(t, ok)
}
