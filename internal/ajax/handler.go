package ajax

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/egoavara/formguard/internal/activation"
	"github.com/egoavara/formguard/internal/i18n"
	"github.com/egoavara/formguard/internal/modules"
)

// Action is the admin-ajax action name handled by this package
const Action = "formguard_integrations_activate"

// Options configures a Handler
type Options struct {
	Host     activation.HostService
	Registry *modules.Registry
	// Tokens maps bearer tokens to the capabilities of their holder
	Tokens       map[string]activation.Capabilities
	AllowInstall bool
	Logger       *slog.Logger
}

// Handler serves the integrations activation endpoint
type Handler struct {
	host         activation.HostService
	registry     *modules.Registry
	tokens       map[string]activation.Capabilities
	allowInstall bool
	logger       *slog.Logger

	// one activation request runs at a time per site
	mu sync.Mutex
}

// NewHandler creates a Handler
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		host:         opts.Host,
		registry:     opts.Registry,
		tokens:       opts.Tokens,
		allowInstall: opts.AllowInstall,
		logger:       logger,
	}
}

// RegisterRoutes registers the endpoint routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /wp-admin/admin-ajax.php", h.handleAction)
	mux.HandleFunc("GET /api/integrations", h.handleList)
}

// Routes returns a handler serving every route with access logging and
// panic recovery applied
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Logging(h.logger, Recover(h.logger, mux))
}

// envelope is the JSON shape of every response
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageData struct {
	Message string `json:"message"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeEnvelope(w, false, messageData{Message: err.Error()})
		return
	}

	if r.FormValue("action") != Action {
		writeEnvelope(w, false, messageData{Message: i18n.T("UnknownAction", nil)})
		return
	}

	caps, ok := h.authorize(r)
	if !ok {
		writeEnvelope(w, false, messageData{Message: i18n.T("SessionExpired", nil)})
		return
	}

	req := activation.Request{
		Activate: parseBool(r.FormValue("activate")),
		Entity:   modules.Entity(sanitize(r.FormValue("entity"))),
		Status:   sanitize(r.FormValue("status")),
		NewTheme: sanitize(r.FormValue("newTheme")),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session := activation.NewSession(activation.Options{
		Host:         h.host,
		Registry:     h.registry,
		Capabilities: caps,
		AllowInstall: h.allowInstall,
		Logger:       h.logger,
	})

	resp, err := session.Process(r.Context(), req)
	if err != nil {
		h.logger.Warn("activation request failed",
			"session", session.ID(),
			"status", req.Status,
			"code", activation.CodeOf(err),
			"error", err,
		)
	}
	writeEnvelope(w, err == nil, resp)
}

type integrationInfo struct {
	modules.Integration
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(r); !ok {
		writeEnvelope(w, false, messageData{Message: i18n.T("SessionExpired", nil)})
		return
	}

	session := activation.NewSession(activation.Options{
		Host:     h.host,
		Registry: h.registry,
		Logger:   h.logger,
	})
	stati := session.Stati()

	all := h.registry.All()
	list := make([]integrationInfo, 0, len(all))
	for _, it := range all {
		list = append(list, integrationInfo{Integration: it, Enabled: stati[it.Status]})
	}
	writeEnvelope(w, true, list)
}

// authorize resolves the caller's capabilities from the bearer token, or
// from the "nonce" form field when no Authorization header is sent
func (h *Handler) authorize(r *http.Request) (activation.Capabilities, bool) {
	token := ""
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, value, found := strings.Cut(auth, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return nil, false
		}
		token = strings.TrimSpace(value)
	} else {
		token = r.FormValue("nonce")
	}

	if token == "" {
		return nil, false
	}
	caps, ok := h.tokens[token]
	return caps, ok
}

func writeEnvelope(w http.ResponseWriter, success bool, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(envelope{Success: success, Data: data})
}

// parseBool accepts the truthy spellings HTML forms send
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// sanitize trims a form value and strips control characters and tags
func sanitize(v string) string {
	v = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '<' || r == '>' {
			return -1
		}
		return r
	}, v)
	return strings.TrimSpace(v)
}
