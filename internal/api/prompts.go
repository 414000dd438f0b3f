package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/prompt"
)

// BuiltinPrompt describes one built-in action and its effective template
type BuiltinPrompt struct {
	Action   string  `json:"action"`
	Label    string  `json:"label"`
	Default  string  `json:"default"`
	Override *string `json:"override"`
}

// PromptsResponse is the body of GET /api/prompts
type PromptsResponse struct {
	Language string               `json:"language"`
	Builtin  []BuiltinPrompt      `json:"builtin"`
	Custom   []prompt.CustomEntry `json:"custom"`
}

type overrideRequest struct {
	Prompt string `json:"prompt"`
}

type customRequest struct {
	Label   string `json:"label"`
	Prompt  string `json:"prompt"`
	Enabled *bool  `json:"enabled"`
}

func (h *Handler) listPrompts(w http.ResponseWriter, r *http.Request) {
	language := h.deps.Config.Config().Language
	overrides := h.deps.Prompts.Overrides()

	resp := PromptsResponse{
		Language: language,
		Builtin:  make([]BuiltinPrompt, 0, len(action.BuiltinNames)),
		Custom:   h.deps.Prompts.Customs(),
	}
	for _, name := range action.BuiltinNames {
		p := BuiltinPrompt{Action: name, Label: h.label(name)}
		if h.deps.Translator != nil {
			p.Default, _ = h.deps.Translator.Prompt(name, language)
		}
		if v, ok := overrides[name]; ok {
			p.Override = &v
		}
		resp.Builtin = append(resp.Builtin, p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) putOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.deps.Prompts.SetOverride(r.PathValue("action"), &req.Prompt); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// deleteOverride restores the built-in template
func (h *Handler) deleteOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Prompts.SetOverride(r.PathValue("action"), nil); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// putCustom creates or replaces a custom prompt. New prompts are enabled unless stated otherwise.
func (h *Handler) putCustom(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	if err := action.ValidateCustomID(id); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, errors.New("label cannot be empty"))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	} else if existing, ok := h.deps.Prompts.Custom(id); ok {
		enabled = existing.Enabled
	}

	if err := h.deps.Prompts.SaveCustom(id, req.Label, req.Prompt, enabled); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// deleteCustom removes a custom prompt and any hotkey bound to it
func (h *Handler) deleteCustom(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.deps.Prompts.DeleteCustom(id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if h.deps.Hotkeys != nil {
		if err := h.deps.Hotkeys.Remove(id); err != nil {
			h.log.Warn("Failed to unbind deleted prompt %s: %v", id, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
