package handler

import (
	"net/http"

	"github.com/freeeve/global-command/api/internal/auth"
	"github.com/freeeve/global-command/api/internal/service"
	"github.com/freeeve/global-command/api/pkg/engine"
)

// SessionHandler serves live game state and accepts actions.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// State handles GET /api/v1/games/{id}/state
func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	gs, err := h.sessions.State(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  engine.Summary(gs),
		"can_undo": engine.CanUndo(gs),
		"state":    gs,
	})
}

// LegalActions handles GET /api/v1/games/{id}/legal-actions
func (h *SessionHandler) LegalActions(w http.ResponseWriter, r *http.Request) {
	las, err := h.sessions.LegalActions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if las == nil {
		las = []engine.LegalAction{}
	}
	writeJSON(w, http.StatusOK, las)
}

// SubmitAction handles POST /api/v1/games/{id}/actions
func (h *SessionHandler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var a engine.Action
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid action body")
		return
	}
	if a.Type == "" {
		writeError(w, http.StatusBadRequest, "action type is required")
		return
	}
	if a.Type == engine.ActionUnplaceUnit {
		writeError(w, http.StatusBadRequest, "unplace_unit is not a player action")
		return
	}
	out, err := h.sessions.SubmitAction(r.Context(), r.PathValue("id"), userID, a)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Undo handles POST /api/v1/games/{id}/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	out, err := h.sessions.Undo(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ActionHistory handles GET /api/v1/games/{id}/actions
func (h *SessionHandler) ActionHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.sessions.ActionHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if recs == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
