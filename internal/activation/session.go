package activation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/modules"
)

// Options configures a Session
type Options struct {
	Host         HostService
	Registry     *modules.Registry
	Capabilities Capabilities
	// AllowInstall lets the walker install missing plugins when the caller
	// also holds CapInstallPlugins
	AllowInstall bool
	Logger       *slog.Logger
}

// Session sequences the activations of one request.
// It owns the builder memo, so a Session must not outlive its request.
type Session struct {
	id           string
	host         HostService
	registry     *modules.Registry
	caps         Capabilities
	allowInstall bool
	// site setting; allowInstall additionally needs CapInstallPlugins
	installEnabled bool
	builder        *Builder
	walker         *Walker
	logger         *slog.Logger
}

// NewSession creates a session for one request
func NewSession(opts Options) *Session {
	id := uuid.NewString()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	caps := opts.Capabilities
	if caps == nil {
		caps = Capabilities{}
	}

	builder := NewBuilder(opts.Host)
	allowInstall := opts.AllowInstall && caps.Can(CapInstallPlugins)

	return &Session{
		id:             id,
		host:           opts.Host,
		registry:       opts.Registry,
		caps:           caps,
		allowInstall:   allowInstall,
		installEnabled: opts.AllowInstall,
		builder:        builder,
		walker:         NewWalker(opts.Host, builder, allowInstall, logger),
		logger:         logger,
	}
}

// ID returns the session's unique identifier
func (s *Session) ID() string {
	return s.id
}

// Builder returns the session's tree builder
func (s *Session) Builder() *Builder {
	return s.builder
}

// ActivatePlugins builds and walks a tree for every ref.
// It returns the walked trees and, when any node failed, a *CombinedError
// holding every node error. An empty ref list is a no-op.
func (s *Session) ActivatePlugins(ctx context.Context, refs []string) ([]Node, error) {
	trees := make([]Node, 0, len(refs))
	var failed []*ActivationError
	reported := make(map[string]bool)

	installFailed := s.walker.InstallMissing(ctx, refs)

	for _, ref := range refs {
		var walked Node
		if ae, ok := installFailed[ref]; ok {
			walked = Node{Plugin: ref, Result: ae}
		} else {
			tree, err := s.builder.Build(ref)
			if err != nil {
				return trees, fmt.Errorf("failed to build activation tree for %s: %w", ref, err)
			}
			walked = s.walker.Walk(ctx, tree)
		}
		trees = append(trees, walked)

		// a shared dependency failing under several roots is reported once
		for _, ae := range walked.Failures() {
			if reported[ae.Plugin] {
				continue
			}
			reported[ae.Plugin] = true
			failed = append(failed, ae)
		}
	}

	if len(failed) > 0 {
		return trees, &CombinedError{Errors: failed}
	}
	return trees, nil
}

// PluginName returns the display name of a plugin identifier
func (s *Session) PluginName(id string) string {
	if s.registry != nil {
		if it, ok := s.registry.ByPlugin(id); ok {
			return it.Name
		}
	}
	if installed, err := s.builder.InstalledPlugins(); err == nil {
		if h, ok := installed[id]; ok && h.Name != "" {
			return h.Name
		}
	}
	return id
}

// PluginNamesFromTrees returns the display names of the activated plugins of trees
func (s *Session) PluginNamesFromTrees(trees []Node) []string {
	return PluginNamesFromTrees(trees, s.PluginName)
}

// Stati reports for every integration whether it is currently enabled.
// A plugin integration is enabled when any of its plugins is active; a
// theme integration when its theme is the active stylesheet or template.
func (s *Session) Stati() map[string]bool {
	stati := make(map[string]bool)
	if s.registry == nil {
		return stati
	}

	stylesheet, template := s.host.ActiveTheme()
	for _, it := range s.registry.All() {
		switch it.Entity {
		case modules.EntityTheme:
			stati[it.Status] = it.Theme != "" && (it.Theme == stylesheet || it.Theme == template)
		default:
			active := false
			for _, id := range it.Plugins {
				if s.host.IsActive(id) {
					active = true
					break
				}
			}
			stati[it.Status] = active
		}
	}
	return stati
}

// Process dispatches req on its entity
func (s *Session) Process(ctx context.Context, req Request) (Response, error) {
	s.logger.Info("activation request",
		"status", req.Status,
		"entity", req.Entity,
		"activate", req.Activate,
	)

	switch req.Entity {
	case modules.EntityPlugin:
		return s.ProcessPlugin(ctx, req)
	case modules.EntityTheme:
		return s.ProcessTheme(ctx, req)
	default:
		err := NewError(CodeNotFound, i18n.T("InvalidEntity", map[string]interface{}{"Entity": req.Entity}))
		return s.pluginResponse(nil, err.Message), err
	}
}

// ProcessPlugin activates or deactivates a plugin integration
func (s *Session) ProcessPlugin(ctx context.Context, req Request) (Response, error) {
	if !s.caps.Can(CapActivatePlugins) {
		err := NewError(CodePermissionDenied, i18n.T("PermissionActivatePlugins", nil))
		return s.pluginResponse(nil, err.Message), err
	}

	it, err := s.integration(req.Status, modules.EntityPlugin)
	if err != nil {
		return s.pluginResponse(nil, err.Message), err
	}

	if !req.Activate {
		return s.deactivatePlugins(it)
	}

	roots, err := s.pluginRoots(it)
	if err != nil {
		return s.pluginResponse(nil, err.Message), err
	}

	trees, actErr := s.ActivatePlugins(ctx, roots)
	if actErr != nil {
		msg := i18n.T("PluginActivateError", map[string]interface{}{
			"Name":  it.Name,
			"Error": actErr.Error(),
		})
		return s.pluginResponse(trees, msg), actErr
	}

	s.logger.Info("integration activated", "status", it.Status, "plugins", len(trees))
	return s.pluginResponse(trees, s.activatedMessage("PluginActivated", it.Name, trees)), nil
}

func (s *Session) deactivatePlugins(it modules.Integration) (Response, error) {
	var active []string
	for _, id := range it.Plugins {
		if s.host.IsActive(id) {
			active = append(active, id)
		}
	}

	if len(active) > 0 {
		if err := s.host.Deactivate(active); err != nil {
			ae := AsActivationError(err, CodeActivationFailed)
			msg := i18n.T("PluginDeactivateError", map[string]interface{}{
				"Name":  it.Name,
				"Error": ae.Message,
			})
			return s.pluginResponse(nil, msg), ae
		}
	}

	s.logger.Info("integration deactivated", "status", it.Status, "plugins", len(active))
	return s.pluginResponse(nil, i18n.T("PluginDeactivated", map[string]interface{}{"Name": it.Name})), nil
}

// pluginRoots returns the plugins of it to activate: the installed ones, or
// the preferred plugin when none is installed and installing is permitted
func (s *Session) pluginRoots(it modules.Integration) ([]string, *ActivationError) {
	installed, err := s.builder.InstalledPlugins()
	if err != nil {
		return nil, NewError(CodeNotFound, err.Error())
	}

	var roots []string
	for _, id := range it.Plugins {
		if _, ok := installed[id]; ok {
			roots = append(roots, id)
		}
	}
	if len(roots) > 0 {
		return roots, nil
	}

	switch {
	case s.allowInstall:
		return it.Plugins[:1], nil
	case s.installEnabled:
		return nil, NewError(CodePermissionDenied, i18n.T("PermissionInstallPlugins", nil))
	default:
		return nil, NewError(CodeNotFound, i18n.T("PluginNotInstalled", map[string]interface{}{"Name": it.Name}))
	}
}

func (s *Session) integration(status string, entity modules.Entity) (modules.Integration, *ActivationError) {
	if s.registry == nil {
		return modules.Integration{}, NewError(CodeNotFound, i18n.T("IntegrationNotFound", map[string]interface{}{"Status": status}))
	}
	it, ok := s.registry.Get(status)
	if !ok {
		return modules.Integration{}, NewError(CodeNotFound, i18n.T("IntegrationNotFound", map[string]interface{}{"Status": status}))
	}
	if it.Entity != entity {
		return modules.Integration{}, NewError(CodeNotFound, i18n.T("EntityMismatch", map[string]interface{}{
			"Status": status,
			"Entity": entity,
		}))
	}
	return it, nil
}

// activatedMessage builds the success message for the target name, listing
// the other plugins the trees activated
func (s *Session) activatedMessage(messageID, name string, trees []Node) string {
	var dependents []string
	for _, n := range s.PluginNamesFromTrees(trees) {
		if n != name {
			dependents = append(dependents, n)
		}
	}

	msg := i18n.T(messageID, map[string]interface{}{"Name": name})
	if len(dependents) == 0 {
		return msg
	}
	return msg + " " + i18n.T("DependentPluginsActivated", map[string]interface{}{
		"Names": strings.Join(dependents, ", "),
	}, len(dependents))
}

func (s *Session) pluginResponse(trees []Node, message string) Response {
	return Response{
		Entity:  modules.EntityPlugin,
		Message: message,
		Stati:   s.Stati(),
		Trees:   trees,
	}
}
