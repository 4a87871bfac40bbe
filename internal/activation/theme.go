package activation

import (
	"context"

	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/modules"
	"github.com/egoavara/formguard/internal/plugin"
	"github.com/egoavara/formguard/internal/theme"
)

// ProcessTheme switches the site theme.
// Activation targets the integration's theme; deactivation switches to
// req.NewTheme or, when empty, to the host's default theme. The theme's
// plugin dependencies are activated before the switch.
func (s *Session) ProcessTheme(ctx context.Context, req Request) (Response, error) {
	if !s.caps.Can(CapSwitchThemes) {
		err := NewError(CodePermissionDenied, i18n.T("PermissionSwitchThemes", nil))
		return s.themeResponse(nil, err.Message), err
	}

	var (
		slug string
		deps []string
	)
	if req.Activate {
		it, err := s.integration(req.Status, modules.EntityTheme)
		if err != nil {
			return s.themeResponse(nil, err.Message), err
		}
		slug, deps = it.Theme, it.Plugins
	} else {
		slug = req.NewTheme
	}

	return s.switchTheme(ctx, slug, deps)
}

func (s *Session) switchTheme(ctx context.Context, slug string, deps []string) (Response, error) {
	if slug == "" {
		slug = s.host.DefaultTheme()
		if slug == "" {
			err := NewError(CodeNotFound, i18n.T("NoDefaultTheme", nil))
			return s.themeResponse(nil, err.Message), err
		}
	}

	themes, err := s.host.Themes()
	if err != nil {
		ae := AsActivationError(err, CodeNotFound)
		return s.themeResponse(nil, ae.Message), ae
	}
	th, ok := themes[slug]
	if !ok {
		err := NewError(CodeNotFound, i18n.T("ThemeNotInstalled", map[string]interface{}{"Name": slug}))
		return s.themeResponse(nil, err.Message), err
	}

	trees, actErr := s.ActivatePlugins(ctx, s.themeRoots(th, themes, deps))
	if actErr != nil {
		msg := i18n.T("ThemeActivateError", map[string]interface{}{
			"Name":  th.Name,
			"Error": actErr.Error(),
		})
		return s.themeResponse(trees, msg), actErr
	}

	if err := s.host.SwitchTheme(slug); err != nil {
		ae := AsActivationError(err, CodeActivationFailed)
		msg := i18n.T("ThemeActivateError", map[string]interface{}{
			"Name":  th.Name,
			"Error": ae.Message,
		})
		return s.themeResponse(trees, msg), ae
	}

	s.logger.Info("theme switched", "theme", slug, "plugins", len(trees))
	return s.themeResponse(trees, s.activatedMessage("ThemeActivated", th.Name, trees)), nil
}

// themeRoots returns the plugins a theme needs: the integration's plugins,
// the theme's own requirements and those of its parent theme. Plugins that
// are not installed are kept only when installing is allowed.
func (s *Session) themeRoots(th theme.Header, themes map[string]theme.Header, deps []string) []string {
	refs := append([]string{}, deps...)
	refs = append(refs, th.RequiresPlugins...)
	if th.IsChild() {
		if parent, ok := themes[th.Template]; ok {
			refs = append(refs, parent.RequiresPlugins...)
		}
	}

	installed, err := s.builder.InstalledPlugins()
	if err != nil {
		installed = nil
	}

	var roots []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		key := ref
		if id, ok := plugin.Resolve(installed, ref); ok {
			key = id
		} else if !s.allowInstall {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		roots = append(roots, key)
	}
	return roots
}

func (s *Session) themeResponse(trees []Node, message string) Response {
	resp := Response{
		Entity:       modules.EntityTheme,
		Message:      message,
		Stati:        s.Stati(),
		Themes:       make(map[string]string),
		DefaultTheme: s.host.DefaultTheme(),
		Trees:        trees,
	}

	themes, err := s.host.Themes()
	if err != nil {
		s.logger.Warn("failed to list themes", "error", err)
		return resp
	}
	stylesheet, _ := s.host.ActiveTheme()
	for slug, h := range themes {
		if slug != stylesheet {
			resp.Themes[slug] = h.Name
		}
	}
	return resp
}
