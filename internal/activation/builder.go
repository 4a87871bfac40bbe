package activation

import (
	"fmt"

	"github.com/egoavara/formguard/internal/plugin"
)

// Builder expands plugin identifiers into dependency trees.
// Trees are memoised per root for the builder's lifetime, which is one session.
type Builder struct {
	host      HostService
	memo      map[string]Node
	installed map[string]plugin.Header
}

// NewBuilder creates a builder reading plugins from host
func NewBuilder(host HostService) *Builder {
	return &Builder{
		host: host,
		memo: make(map[string]Node),
	}
}

// Build returns the activation tree rooted at ref.
// ref is a plugin identifier or a plugin directory name. A plugin that is
// not installed yields a leaf node; dependencies that do not resolve to an
// installed plugin are dropped.
func (b *Builder) Build(ref string) (Node, error) {
	if n, ok := b.memo[ref]; ok {
		return n, nil
	}

	installed, err := b.InstalledPlugins()
	if err != nil {
		return Node{}, err
	}

	id := ref
	if resolved, ok := plugin.Resolve(installed, ref); ok {
		id = resolved
	}

	n := b.build(id, make(map[string]bool))
	b.memo[ref] = n
	if id != ref {
		b.memo[id] = n
	}
	return n, nil
}

// Rebuild drops every cached tree and the installed-plugins map, then builds
// ref again. The walker calls it after installing a plugin: the install can
// resolve dependencies that earlier trees dropped.
func (b *Builder) Rebuild(ref string) (Node, error) {
	b.Invalidate()
	return b.Build(ref)
}

// Invalidate drops every cached tree and the installed-plugins map
func (b *Builder) Invalidate() {
	b.installed = nil
	b.memo = make(map[string]Node)
}

// Installed reports whether id is an installed plugin identifier
func (b *Builder) Installed(id string) bool {
	installed, err := b.InstalledPlugins()
	if err != nil {
		return false
	}
	_, ok := installed[id]
	return ok
}

// InstalledPlugins returns the installed-plugins map, read once per builder
func (b *Builder) InstalledPlugins() (map[string]plugin.Header, error) {
	if b.installed != nil {
		return b.installed, nil
	}
	installed, err := b.host.InstalledPlugins()
	if err != nil {
		return nil, fmt.Errorf("failed to list installed plugins: %w", err)
	}
	b.installed = installed
	return installed, nil
}

// build expands id; path holds the identifiers between the root and id
func (b *Builder) build(id string, path map[string]bool) Node {
	n := Node{Plugin: id}
	if _, ok := b.installed[id]; !ok {
		return n
	}

	meta, err := b.host.Metadata(id)
	if err != nil {
		return n
	}

	path[id] = true
	defer delete(path, id)

	for _, dir := range meta.RequiresPlugins {
		dep, ok := plugin.Resolve(b.installed, dir)
		if !ok || path[dep] {
			continue
		}
		n.Children = append(n.Children, b.build(dep, path))
	}
	return n
}
