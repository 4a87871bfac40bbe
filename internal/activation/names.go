package activation

// NameFunc maps a plugin identifier to its display name
type NameFunc func(id string) string

// PluginNamesFromTree returns the display names of the successfully
// activated plugins of a walked tree, parent before children
func PluginNamesFromTree(tree Node, name NameFunc) []string {
	return PluginNamesFromTrees([]Node{tree}, name)
}

// PluginNamesFromTrees is PluginNamesFromTree over several trees.
// Names are de-duplicated in first-seen order.
func PluginNamesFromTrees(trees []Node, name NameFunc) []string {
	var names []string
	seen := make(map[string]bool)
	for _, tree := range trees {
		collectNames(tree, name, seen, &names)
	}
	return names
}

func collectNames(n Node, name NameFunc, seen map[string]bool, names *[]string) {
	if n.Result == nil {
		if display := name(n.Plugin); display != "" && !seen[display] {
			seen[display] = true
			*names = append(*names, display)
		}
	}
	for _, c := range n.Children {
		collectNames(c, name, seen, names)
	}
}
