package activation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"github.com/egoavara/formguard/internal/modules"
	"github.com/egoavara/formguard/internal/plugin"
	"github.com/egoavara/formguard/internal/theme"
)

type fakeHost struct {
	plugins       map[string]plugin.Header
	active        map[string]bool
	activateErr   map[string]error
	available     map[string]plugin.Header // installable, keyed by identifier
	installErr    error
	themes        map[string]theme.Header
	stylesheet    string
	defaultTheme  string
	metadataReads map[string]int
	activated     []string
	deactivated   []string
	installed     []string
}

func newFakeHost(headers ...plugin.Header) *fakeHost {
	h := &fakeHost{
		plugins:       make(map[string]plugin.Header),
		active:        make(map[string]bool),
		activateErr:   make(map[string]error),
		available:     make(map[string]plugin.Header),
		themes:        make(map[string]theme.Header),
		metadataReads: make(map[string]int),
	}
	for _, hdr := range headers {
		h.plugins[hdr.ID] = hdr
	}
	return h
}

func (h *fakeHost) InstalledPlugins() (map[string]plugin.Header, error) {
	out := make(map[string]plugin.Header, len(h.plugins))
	for id, hdr := range h.plugins {
		out[id] = hdr
	}
	return out, nil
}

func (h *fakeHost) Metadata(id string) (plugin.Header, error) {
	h.metadataReads[id]++
	hdr, ok := h.plugins[id]
	if !ok {
		return plugin.Header{}, errors.New("not installed")
	}
	return hdr, nil
}

func (h *fakeHost) IsActive(id string) bool {
	return h.active[id]
}

func (h *fakeHost) Activate(id string) error {
	h.activated = append(h.activated, id)
	if err := h.activateErr[id]; err != nil {
		return err
	}
	if _, ok := h.plugins[id]; !ok {
		return errors.New("plugin file does not exist")
	}
	h.active[id] = true
	return nil
}

func (h *fakeHost) Deactivate(ids []string) error {
	for _, id := range ids {
		h.deactivated = append(h.deactivated, id)
		delete(h.active, id)
	}
	return nil
}

func (h *fakeHost) Install(_ context.Context, ref string) (string, error) {
	if h.installErr != nil {
		return "", h.installErr
	}
	ids := make([]string, 0, len(h.available))
	for id := range h.available {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if id == ref || plugin.DirOf(id) == ref {
			h.plugins[id] = h.available[id]
			delete(h.available, id)
			h.installed = append(h.installed, id)
			return id, nil
		}
	}
	return "", NewError(CodeNotFound, "no install source for "+ref)
}

func (h *fakeHost) Themes() (map[string]theme.Header, error) {
	return h.themes, nil
}

func (h *fakeHost) ActiveTheme() (string, string) {
	if th, ok := h.themes[h.stylesheet]; ok && th.IsChild() {
		return h.stylesheet, th.Template
	}
	return h.stylesheet, h.stylesheet
}

func (h *fakeHost) SwitchTheme(slug string) error {
	if _, ok := h.themes[slug]; !ok {
		return errors.New("theme does not exist")
	}
	h.stylesheet = slug
	return nil
}

func (h *fakeHost) DefaultTheme() string {
	return h.defaultTheme
}

func hdr(id, name string, requires ...string) plugin.Header {
	return plugin.Header{ID: id, Name: name, RequiresPlugins: requires}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry() *modules.Registry {
	r, err := modules.New([]modules.Integration{
		{Status: "woocommerce_status", Name: "WooCommerce", Entity: modules.EntityPlugin, Plugins: []string{"woocommerce/woocommerce.php"}},
		{Status: "woocommerce_wishlists_status", Name: "WooCommerce Wishlists", Entity: modules.EntityPlugin, Plugins: []string{"woocommerce-wishlists/woocommerce-wishlists.php"}},
		{Status: "acfe_status", Name: "ACF Extended", Entity: modules.EntityPlugin, Plugins: []string{"acf-extended-pro/acf-extended.php", "acf-extended/acf-extended.php"}},
		{Status: "avada_status", Name: "Avada", Entity: modules.EntityTheme, Theme: "Avada", Plugins: []string{"fusion-builder/fusion-builder.php", "fusion-core/fusion-core.php"}},
	})
	if err != nil {
		panic(err)
	}
	return r
}

func newTestSession(host HostService, caps Capabilities, allowInstall bool) *Session {
	return NewSession(Options{
		Host:         host,
		Registry:     testRegistry(),
		Capabilities: caps,
		AllowInstall: allowInstall,
		Logger:       quietLogger(),
	})
}

func allCaps() Capabilities {
	return NewCapabilities("*")
}
