package activation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluginNamesFromTree(t *testing.T) {
	names := map[string]string{"a": "A", "b": "B", "c": "C"}
	tree := Node{Plugin: "a", Children: []Node{
		{Plugin: "b", Children: []Node{{Plugin: "c"}}},
	}}

	got := PluginNamesFromTree(tree, func(id string) string { return names[id] })
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestPluginNamesFromTrees_ExcludesFailedAndDeduplicates(t *testing.T) {
	name := func(id string) string { return id }
	trees := []Node{
		{Plugin: "a", Children: []Node{
			{Plugin: "b", Result: NewError(CodeActivationFailed, "x")},
			{Plugin: "c"},
		}},
		{Plugin: "d", Children: []Node{{Plugin: "c"}, {Plugin: "a"}}},
	}

	assert.Equal(t, []string{"a", "c", "d"}, PluginNamesFromTrees(trees, name))
}

func TestPluginNamesFromTrees_FailedParentKeepsChildren(t *testing.T) {
	name := func(id string) string { return id }
	tree := Node{Plugin: "a", Result: NewError(CodeActivationFailed, "x"), Children: []Node{{Plugin: "b"}}}

	assert.Equal(t, []string{"b"}, PluginNamesFromTree(tree, name))
}

func TestSession_PluginName(t *testing.T) {
	host := newFakeHost(
		hdr("woocommerce/woocommerce.php", "WooCommerce by Automattic"),
		hdr("fusion-builder/fusion-builder.php", "Avada Builder"),
	)
	s := newTestSession(host, allCaps(), false)

	assert.Equal(t, "WooCommerce", s.PluginName("woocommerce/woocommerce.php"))
	assert.Equal(t, "Avada Builder", s.PluginName("fusion-builder/fusion-builder.php"))
	assert.Equal(t, "unknown/unknown.php", s.PluginName("unknown/unknown.php"))
}
