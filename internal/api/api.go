package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/hotkey"
	"github.com/yok-tottii/typo/internal/i18n"
	"github.com/yok-tottii/typo/internal/logger"
	"github.com/yok-tottii/typo/internal/prompt"
	"github.com/yok-tottii/typo/internal/snippet"
	"github.com/yok-tottii/typo/internal/usage"
	"github.com/yok-tottii/typo/internal/wizard"
)

// UsageSource is the read side of the usage tracker
type UsageSource interface {
	CurrentMonth() string
	Summary(month string) (usage.Summary, error)
	ByAction(month string) ([]usage.ActionCount, error)
}

// Deps are the stores the settings API edits
type Deps struct {
	Config     *config.Store
	Hotkeys    *hotkey.Registry
	Prompts    *prompt.Store
	Snippets   *snippet.Store
	Usage      UsageSource // optional
	Wizard     *wizard.SetupWizard
	Translator *i18n.Translator
	Logger     logger.Interface

	// Reload re-reads every file from disk and reapplies the result
	Reload func() error
}

// Handler manages API endpoints
type Handler struct {
	deps Deps
	log  logger.Interface
}

// New creates a new API handler
func New(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{deps: deps, log: log}
}

// RegisterRoutes registers all API routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /api/settings", h.getSettings)
	mux.HandleFunc("PUT /api/settings", h.putSettings)
	mux.HandleFunc("POST /api/reload", h.reload)
	mux.HandleFunc("GET /api/setup", h.getSetup)
	mux.HandleFunc("DELETE /api/setup", h.resetSetup)
	mux.HandleFunc("GET /api/usage", h.getUsage)

	mux.HandleFunc("GET /api/hotkeys", h.listHotkeys)
	mux.HandleFunc("PUT /api/hotkeys/{action}", h.putHotkey)
	mux.HandleFunc("DELETE /api/hotkeys/{action}", h.deleteHotkey)
	mux.HandleFunc("POST /api/hotkeys/validate", h.validateHotkey)
	mux.HandleFunc("POST /api/hotkeys/reset", h.resetHotkeys)

	mux.HandleFunc("GET /api/prompts", h.listPrompts)
	mux.HandleFunc("PUT /api/prompts/overrides/{action}", h.putOverride)
	mux.HandleFunc("DELETE /api/prompts/overrides/{action}", h.deleteOverride)
	mux.HandleFunc("PUT /api/prompts/custom/{id}", h.putCustom)
	mux.HandleFunc("DELETE /api/prompts/custom/{id}", h.deleteCustom)

	mux.HandleFunc("GET /api/snippets", h.listSnippets)
	mux.HandleFunc("POST /api/snippets", h.createSnippet)
	mux.HandleFunc("GET /api/snippets/export", h.exportSnippets)
	mux.HandleFunc("POST /api/snippets/import", h.importSnippets)
	mux.HandleFunc("GET /api/snippets/{id}", h.getSnippet)
	mux.HandleFunc("PUT /api/snippets/{id}", h.updateSnippet)
	mux.HandleFunc("DELETE /api/snippets/{id}", h.deleteSnippet)
}

// index lists the endpoints for clients landing on the root URL
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    config.AppName,
		"version": config.Version,
		"view":    r.URL.Query().Get("view"),
		"endpoints": []string{
			"/api/settings", "/api/setup", "/api/usage", "/api/reload",
			"/api/hotkeys", "/api/prompts", "/api/snippets", "/ws",
		},
	})
}

// readOnlyKeys cannot be written through /api/settings
var readOnlyKeys = map[string]string{
	"hotkeys": "use /api/hotkeys to change hotkeys",
	"version": "version is managed by the application",
}

// getSettings returns the configuration document with the API key masked
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	doc := h.deps.Config.Document()
	hasKey := h.deps.Config.Config().ResolvedAPIKey() != ""

	doc, err := sjson.DeleteBytes(doc, "api_key")
	if err == nil {
		doc, err = sjson.SetBytes(doc, "has_api_key", hasKey)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to render settings: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

// putSettings applies a partial update. Nested objects are merged key by key.
func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSONObject(w, r)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	var rejected error
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		if reason, ok := readOnlyKeys[key.String()]; ok {
			rejected = errors.New(reason)
			return false
		}
		flatten(config.EscapeKey(key.String()), value, updates)
		return true
	})
	if rejected != nil {
		writeError(w, http.StatusBadRequest, rejected)
		return
	}

	if err := h.deps.Config.Update(updates); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to update config: %w", err))
		return
	}

	// The first save completes the setup
	if h.deps.Wizard != nil {
		if err := h.deps.Wizard.MarkSetupCompleted(); err != nil {
			// The settings are saved, so the request still succeeds
			h.log.Warn("Failed to mark setup completed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// flatten turns nested objects into dotted paths so partial sections keep their other keys
func flatten(path string, value gjson.Result, out map[string]interface{}) {
	if value.IsObject() {
		value.ForEach(func(k, v gjson.Result) bool {
			flatten(path+"."+config.EscapeKey(k.String()), v, out)
			return true
		})
		return
	}
	out[path] = value.Value()
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	if h.deps.Reload == nil {
		writeError(w, http.StatusNotImplemented, errors.New("reload is not available"))
		return
	}
	if err := h.deps.Reload(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to reload: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) getSetup(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wizard == nil {
		writeJSON(w, http.StatusOK, wizard.SetupProgress{})
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Wizard.GetProgress())
}

// resetSetup makes the next launch open the settings page again
func (h *Handler) resetSetup(w http.ResponseWriter, r *http.Request) {
	if h.deps.Wizard == nil {
		writeError(w, http.StatusNotImplemented, errors.New("setup is not available"))
		return
	}
	if err := h.deps.Wizard.ResetSetup(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Wizard.GetProgress())
}

type usageResponse struct {
	usage.Summary
	Display  string              `json:"display"`
	ByAction []usage.ActionCount `json:"by_action"`
}

// getUsage returns the counters of ?month=YYYY-MM, the current month by default
func (h *Handler) getUsage(w http.ResponseWriter, r *http.Request) {
	if h.deps.Usage == nil {
		writeError(w, http.StatusNotImplemented, errors.New("usage tracking is disabled"))
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.deps.Usage.CurrentMonth()
	}

	summary, err := h.deps.Usage.Summary(month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	byAction, err := h.deps.Usage.ByAction(month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if byAction == nil {
		byAction = []usage.ActionCount{}
	}

	writeJSON(w, http.StatusOK, usageResponse{
		Summary:  summary,
		Display:  usage.FormatDisplay(summary),
		ByAction: byAction,
	})
}

// readJSONObject reads the request body and checks that it is a JSON object
func readJSONObject(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return nil, false
	}
	if !gjson.ParseBytes(raw).IsObject() {
		writeError(w, http.StatusBadRequest, errors.New("request body must be a JSON object"))
		return nil, false
	}
	return raw, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps store errors to HTTP status codes
func statusFor(err error) int {
	var ve *hotkey.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, prompt.ErrMissingPlaceholder),
		errors.Is(err, prompt.ErrNotBuiltin),
		errors.Is(err, snippet.ErrInvalidSlot):
		return http.StatusBadRequest
	case errors.Is(err, prompt.ErrNotFound), errors.Is(err, snippet.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
