package activation

import (
	"context"
	"log/slog"

	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/plugin"
)

// Walker activates the plugins of a tree, dependencies first
type Walker struct {
	host         HostService
	builder      *Builder
	allowInstall bool
	logger       *slog.Logger
}

// NewWalker creates a walker. allowInstall permits installing plugins that
// are missing from the site before activating them.
func NewWalker(host HostService, builder *Builder, allowInstall bool, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		host:         host,
		builder:      builder,
		allowInstall: allowInstall,
		logger:       logger,
	}
}

// Walk returns a copy of n with every node's result filled in.
// Children are walked before their parent and a failed child does not stop
// the parent from being attempted.
func (w *Walker) Walk(ctx context.Context, n Node) Node {
	if !w.builder.Installed(n.Plugin) {
		installed, err := w.install(ctx, n.Plugin)
		if err != nil {
			return Node{Plugin: n.Plugin, Result: err}
		}
		n = installed
	}

	out := Node{Plugin: n.Plugin}
	if len(n.Children) > 0 {
		out.Children = make([]Node, 0, len(n.Children))
		for _, child := range n.Children {
			out.Children = append(out.Children, w.Walk(ctx, child))
		}
	}

	out.Result = w.activate(n.Plugin)
	return out
}

// InstallMissing installs every ref that is not installed yet, before any tree
// is built, so a root can depend on a plugin listed after it. It returns the
// install errors keyed by ref; nothing is installed when installs are not allowed.
func (w *Walker) InstallMissing(ctx context.Context, refs []string) map[string]*ActivationError {
	failed := make(map[string]*ActivationError)
	if !w.allowInstall {
		return failed
	}

	installed, err := w.builder.InstalledPlugins()
	if err != nil {
		return failed
	}

	changed := false
	for _, ref := range refs {
		if _, ok := plugin.Resolve(installed, ref); ok {
			continue
		}
		if _, done := failed[ref]; done {
			continue
		}

		id, err := w.host.Install(ctx, ref)
		if err != nil {
			ae := withPlugin(AsActivationError(err, CodeInstallFailed), ref)
			w.logger.Warn("plugin install failed", "plugin", ref, "code", ae.Code, "error", ae.Message)
			failed[ref] = ae
			continue
		}
		w.logger.Info("plugin installed", "plugin", id)
		changed = true

		installed[id] = plugin.Header{ID: id}
	}

	if changed {
		w.builder.Invalidate()
	}
	return failed
}

func (w *Walker) install(ctx context.Context, ref string) (Node, *ActivationError) {
	if !w.allowInstall {
		err := NewError(CodeNotFound, i18n.T("PluginNotInstalled", map[string]interface{}{"Name": ref}))
		return Node{}, withPlugin(err, ref)
	}

	id, err := w.host.Install(ctx, ref)
	if err != nil {
		ae := withPlugin(AsActivationError(err, CodeInstallFailed), ref)
		w.logger.Warn("plugin install failed", "plugin", ref, "code", ae.Code, "error", ae.Message)
		return Node{}, ae
	}
	w.logger.Info("plugin installed", "plugin", id)

	n, err := w.builder.Rebuild(id)
	if err != nil {
		return Node{}, withPlugin(AsActivationError(err, CodeInstallFailed), id)
	}
	return n, nil
}

func (w *Walker) activate(id string) *ActivationError {
	if w.host.IsActive(id) {
		w.logger.Debug("plugin already active", "plugin", id)
		return nil
	}

	if err := w.host.Activate(id); err != nil {
		ae := withPlugin(AsActivationError(err, CodeActivationFailed), id)
		w.logger.Warn("plugin activation failed", "plugin", id, "code", ae.Code, "error", ae.Message)
		return ae
	}
	w.logger.Info("plugin activated", "plugin", id)
	return nil
}
