package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reply-presets/preset"
)

type editRequest struct {
	Text *string `json:"text"`
}

// editResponse acknowledges an edit. The value reaches the backend once the
// settle delay has passed.
type editResponse struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Pending bool   `json:"pending"`
}

func (h *handler) getPresets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.Rows(r.Context())
	if err != nil {
		alog.Error("loading presets failed", "err", err)
		if errors.Is(err, preset.ErrUnavailable) {
			http.Error(w, "preset store unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to load presets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handler) putPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !preset.HasField(h.store.Fields(), id) {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(*req.Text)
	h.store.Edit(id, text)
	writeJSON(w, http.StatusAccepted, editResponse{ID: id, Text: text, Pending: true})
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !preset.HasField(h.store.Fields(), id) {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}
	h.store.Edit(id, "")
	writeJSON(w, http.StatusAccepted, editResponse{ID: id, Pending: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
