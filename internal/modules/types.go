package modules

// Entity is the kind of activatable target an integration refers to
type Entity string

const (
	EntityPlugin Entity = "plugin"
	EntityTheme  Entity = "theme"
)

// Valid reports whether e is a known entity
func (e Entity) Valid() bool {
	return e == EntityPlugin || e == EntityTheme
}

// Integration is one supported third-party plugin or theme
type Integration struct {
	Status   string   `yaml:"status" json:"status"`                         // settings-field key
	Name     string   `yaml:"name" json:"name"`                             // display name
	Entity   Entity   `yaml:"entity" json:"entity"`
	Plugins  []string `yaml:"plugins,omitempty" json:"plugins,omitempty"`   // preferred first
	Theme    string   `yaml:"theme,omitempty" json:"theme,omitempty"`       // stylesheet slug for theme entities
	Category string   `yaml:"category,omitempty" json:"category,omitempty"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// File represents an integrations YAML document
type File struct {
	Integrations []Integration `yaml:"integrations"`
}
