package handler

import (
	"io"
	"net/http"

	"github.com/freeeve/global-command/api/internal/auth"
	"github.com/freeeve/global-command/api/internal/service"
	"github.com/freeeve/global-command/api/pkg/engine"
)

// SaveHandler handles save slot endpoints.
type SaveHandler struct {
	saveSvc *service.SaveService
}

// NewSaveHandler creates a SaveHandler.
func NewSaveHandler(saveSvc *service.SaveService) *SaveHandler {
	return &SaveHandler{saveSvc: saveSvc}
}

// CreateSave handles POST /api/v1/games/{id}/saves
func (h *SaveHandler) CreateSave(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	slot, err := h.saveSvc.SaveGame(r.Context(), r.PathValue("id"), userID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

// ListSaves handles GET /api/v1/games/{id}/saves
func (h *SaveHandler) ListSaves(w http.ResponseWriter, r *http.Request) {
	slots, err := h.saveSvc.ListSaves(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if slots == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// LoadSave handles POST /api/v1/saves/{saveId}/load
func (h *SaveHandler) LoadSave(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	gs, err := h.saveSvc.LoadSave(r.Context(), r.PathValue("saveId"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": engine.Summary(gs),
		"state":   gs,
	})
}
