package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/yok-tottii/typo/internal/action"
	"github.com/yok-tottii/typo/internal/hotkey"
)

// HotkeyEntry is one binding as shown in the settings page
type HotkeyEntry struct {
	Action  string         `json:"action"`
	Label   string         `json:"label"`
	Binding hotkey.Binding `json:"binding"`
	Display string         `json:"display"`
}

// ValidateRequest is the body of POST /api/hotkeys/validate
type ValidateRequest struct {
	Action  string         `json:"action"`
	Binding hotkey.Binding `json:"binding"`
}

// ValidateResponse reports whether a binding could be committed
type ValidateResponse struct {
	Valid     bool              `json:"valid"`
	Reason    hotkey.ReasonCode `json:"reason,omitempty"`
	Message   string            `json:"message,omitempty"`
	Conflicts []string          `json:"conflicts"`
	Display   string            `json:"display"`
}

func (h *Handler) listHotkeys(w http.ResponseWriter, r *http.Request) {
	bindings := h.deps.Hotkeys.Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]HotkeyEntry, 0, len(names))
	for _, name := range names {
		b := bindings[name]
		entries = append(entries, HotkeyEntry{
			Action:  name,
			Label:   h.label(name),
			Binding: b,
			Display: hotkey.FormatHotkey(b),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) label(name string) string {
	if h.deps.Prompts != nil {
		if c, ok := h.deps.Prompts.Custom(name); ok {
			return c.Label
		}
	}
	if h.deps.Translator == nil {
		return name
	}
	if a, err := action.Parse(name); err == nil && a.Kind == action.SnippetSlot {
		return h.deps.Translator.TranslateWithFormat("action.snippet_slot", map[string]string{"slot": strconv.Itoa(a.Slot)})
	}
	return h.deps.Translator.ActionLabel(name)
}

func (h *Handler) putHotkey(w http.ResponseWriter, r *http.Request) {
	var b hotkey.Binding
	if !decodeBody(w, r, &b) {
		return
	}

	name := r.PathValue("action")
	if err := h.deps.Hotkeys.Update(name, b); err != nil {
		writeHotkeyError(w, err)
		return
	}
	h.log.Info("Hotkey %s set to %s", name, hotkey.FormatHotkey(b))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) deleteHotkey(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("action")
	if err := h.deps.Hotkeys.Remove(name); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// validateHotkey runs the same checks as an update without committing
func (h *Handler) validateHotkey(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	b := req.Binding.Normalize()
	resp := ValidateResponse{Valid: true, Conflicts: []string{}, Display: hotkey.FormatHotkey(b)}

	err := hotkey.Validate(b)
	if err == nil && req.Action != "" {
		if _, perr := action.Parse(req.Action); perr != nil {
			err = &hotkey.ValidationError{Reason: hotkey.ReasonBadAction, Binding: b, Detail: perr.Error()}
		}
	}
	if err == nil {
		if conflicts := h.deps.Hotkeys.Conflicts(b, req.Action); len(conflicts) > 0 {
			err = &hotkey.ValidationError{Reason: hotkey.ReasonConflict, Binding: b, Conflicts: conflicts}
		}
	}

	var ve *hotkey.ValidationError
	if errors.As(err, &ve) {
		resp.Valid = false
		resp.Reason = ve.Reason
		resp.Message = ve.Error()
		if ve.Conflicts != nil {
			resp.Conflicts = ve.Conflicts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resetHotkeys(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Hotkeys.ResetToDefaults(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.log.Info("Hotkeys reset to defaults")
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeHotkeyError(w http.ResponseWriter, err error) {
	var ve *hotkey.ValidationError
	if errors.As(err, &ve) {
		conflicts := ve.Conflicts
		if conflicts == nil {
			conflicts = []string{}
		}
		writeJSON(w, http.StatusBadRequest, ValidateResponse{
			Valid:     false,
			Reason:    ve.Reason,
			Message:   ve.Error(),
			Conflicts: conflicts,
			Display:   hotkey.FormatHotkey(ve.Binding),
		})
		return
	}
	writeError(w, statusFor(err), err)
}
