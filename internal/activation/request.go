package activation

import (
	"encoding/json"

	"github.com/egoavara/formguard/internal/modules"
)

// Request is one activation request from the settings page
type Request struct {
	Activate bool           `json:"activate"`
	Entity   modules.Entity `json:"entity"`
	Status   string         `json:"status"`   // settings-field key
	NewTheme string         `json:"newTheme"` // theme to switch to on deactivation
}

// Response is the payload returned for a Request.
// Themes and DefaultTheme are only serialised for theme requests.
type Response struct {
	Entity       modules.Entity
	Message      string
	Stati        map[string]bool
	Themes       map[string]string // slug -> name, the active theme excluded
	DefaultTheme string

	// Trees holds the walked activation trees, for callers that render them
	Trees []Node
}

type pluginPayload struct {
	Message string          `json:"message"`
	Stati   map[string]bool `json:"stati"`
}

type themePayload struct {
	Message      string            `json:"message"`
	Stati        map[string]bool   `json:"stati"`
	Themes       map[string]string `json:"themes"`
	DefaultTheme string            `json:"defaultTheme"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	stati := r.Stati
	if stati == nil {
		stati = map[string]bool{}
	}

	if r.Entity != modules.EntityTheme {
		return json.Marshal(pluginPayload{Message: r.Message, Stati: stati})
	}

	themes := r.Themes
	if themes == nil {
		themes = map[string]string{}
	}
	return json.Marshal(themePayload{
		Message:      r.Message,
		Stati:        stati,
		Themes:       themes,
		DefaultTheme: r.DefaultTheme,
	})
}
