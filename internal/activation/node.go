package activation

// Node is one plugin in an activation tree.
// Children are the plugin's resolved dependencies; Result is nil once the
// plugin is active (or before the tree is walked).
type Node struct {
	Plugin   string           `json:"plugin"`
	Children []Node           `json:"children,omitempty"`
	Result   *ActivationError `json:"result,omitempty"`
}

// Failed reports whether the node's own activation failed
func (n Node) Failed() bool {
	return n.Result != nil
}

// Failures returns the errors of every failed node in post-order
func (n Node) Failures() []*ActivationError {
	var errs []*ActivationError
	n.visit(func(node Node) {
		if node.Result != nil {
			errs = append(errs, node.Result)
		}
	})
	return errs
}

// Order returns plugin identifiers in the order the walker attempts them
func (n Node) Order() []string {
	var ids []string
	n.visit(func(node Node) {
		ids = append(ids, node.Plugin)
	})
	return ids
}

// Size returns the number of nodes in the tree
func (n Node) Size() int {
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

func (n Node) visit(fn func(Node)) {
	for _, c := range n.Children {
		c.visit(fn)
	}
	fn(n)
}
