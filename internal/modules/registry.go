package modules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/egoavara/formguard/internal/plugin"
	"gopkg.in/yaml.v3"
)

//go:embed integrations.yaml
var builtinYAML []byte

// Registry maps settings-field keys to integrations
type Registry struct {
	items    map[string]Integration
	byPlugin map[string]string // plugin identifier -> status
}

// Parse decodes an integrations YAML document
func Parse(data []byte) ([]Integration, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse integrations: %w", err)
	}
	return f.Integrations, nil
}

// Builtin returns the registry of integrations shipped with formguard
func Builtin() (*Registry, error) {
	items, err := Parse(builtinYAML)
	if err != nil {
		return nil, err
	}
	return New(items)
}

// Load returns the builtin registry merged with the entries of overridePath.
// Override entries replace builtin entries with the same status key.
// An empty or missing overridePath yields the builtin registry.
func Load(overridePath string) (*Registry, error) {
	items, err := Parse(builtinYAML)
	if err != nil {
		return nil, err
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		switch {
		case err == nil:
			extra, err := Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", overridePath, err)
			}
			items = merge(items, extra)
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read integrations override: %w", err)
		}
	}

	return New(items)
}

// New builds a registry from the given integrations after validating them
func New(items []Integration) (*Registry, error) {
	r := &Registry{
		items:    make(map[string]Integration, len(items)),
		byPlugin: make(map[string]string),
	}

	for _, it := range items {
		if err := validate(it); err != nil {
			return nil, err
		}
		if _, dup := r.items[it.Status]; dup {
			return nil, fmt.Errorf("integration %q is defined twice", it.Status)
		}
		r.items[it.Status] = it
	}

	// reverse lookup covers plugin integrations only; theme integrations list
	// builder plugins that keep their own names
	for _, it := range r.All() {
		if it.Entity != EntityPlugin {
			continue
		}
		for _, id := range it.Plugins {
			if _, taken := r.byPlugin[id]; !taken {
				r.byPlugin[id] = it.Status
			}
		}
	}

	return r, nil
}

// Get returns the integration for a settings-field key
func (r *Registry) Get(status string) (Integration, bool) {
	it, ok := r.items[status]
	return it, ok
}

// ByPlugin returns the plugin integration owning a plugin identifier
func (r *Registry) ByPlugin(id string) (Integration, bool) {
	status, ok := r.byPlugin[id]
	if !ok {
		return Integration{}, false
	}
	return r.items[status], true
}

// All returns every integration sorted by status key
func (r *Registry) All() []Integration {
	list := make([]Integration, 0, len(r.items))
	for _, it := range r.items {
		list = append(list, it)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Status < list[j].Status
	})
	return list
}

// Len returns the number of integrations
func (r *Registry) Len() int {
	return len(r.items)
}

func validate(it Integration) error {
	if it.Status == "" {
		return fmt.Errorf("integration %q: status is required", it.Name)
	}
	if it.Name == "" {
		return fmt.Errorf("integration %q: name is required", it.Status)
	}
	if !it.Entity.Valid() {
		return fmt.Errorf("integration %q: unknown entity %q", it.Status, it.Entity)
	}
	if it.Entity == EntityPlugin && len(it.Plugins) == 0 {
		return fmt.Errorf("integration %q: plugin entity needs at least one plugin", it.Status)
	}
	if it.Entity == EntityTheme && it.Theme == "" {
		return fmt.Errorf("integration %q: theme entity needs a theme", it.Status)
	}
	for _, id := range it.Plugins {
		if !plugin.IsIdentifier(id) {
			return fmt.Errorf("integration %q: invalid plugin identifier %q", it.Status, id)
		}
	}
	return nil
}

func merge(base, extra []Integration) []Integration {
	index := make(map[string]int, len(base))
	for i, it := range base {
		index[it.Status] = i
	}
	for _, it := range extra {
		if i, ok := index[it.Status]; ok {
			base[i] = it
			continue
		}
		index[it.Status] = len(base)
		base = append(base, it)
	}
	return base
}
