package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yok-tottii/typo/internal/snippet"
)

type snippetRequest struct {
	Label      string `json:"label"`
	Content    string `json:"content"`
	HotkeySlot *int   `json:"hotkey_slot"`
}

func (req snippetRequest) slot() int {
	if req.HotkeySlot == nil {
		return 0
	}
	return *req.HotkeySlot
}

// listSnippets returns every snippet, or the ranked matches of ?q=
func (h *Handler) listSnippets(w http.ResponseWriter, r *http.Request) {
	var list []snippet.Snippet
	if q := r.URL.Query().Get("q"); q != "" {
		list = h.deps.Snippets.Search(q)
	} else {
		list = h.deps.Snippets.All()
	}
	if list == nil {
		list = []snippet.Snippet{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) getSnippet(w http.ResponseWriter, r *http.Request) {
	sn, ok := h.deps.Snippets.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, snippet.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (h *Handler) createSnippet(w http.ResponseWriter, r *http.Request) {
	h.saveSnippet(w, r, "")
}

func (h *Handler) updateSnippet(w http.ResponseWriter, r *http.Request) {
	h.saveSnippet(w, r, r.PathValue("id"))
}

func (h *Handler) saveSnippet(w http.ResponseWriter, r *http.Request, id string) {
	var req snippetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, errors.New("label cannot be empty"))
		return
	}

	newID, err := h.deps.Snippets.Save(req.Label, req.Content, req.slot(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	sn, _ := h.deps.Snippets.Get(newID)
	writeJSON(w, status, sn)
}

func (h *Handler) deleteSnippet(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Snippets.Delete(r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// exportSnippets streams the snippets as a YAML document
func (h *Handler) exportSnippets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="snippets.yaml"`)
	if err := h.deps.Snippets.Export(w); err != nil {
		h.log.Error("Failed to export snippets: %v", err)
	}
}

// importSnippets reads a YAML document; ?replace=true drops the current snippets first
func (h *Handler) importSnippets(w http.ResponseWriter, r *http.Request) {
	replace := r.URL.Query().Get("replace") == "true"
	n, err := h.deps.Snippets.Import(http.MaxBytesReader(w, r.Body, 4<<20), replace)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to import snippets: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
