package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/internal/service"
	"github.com/freeeve/global-command/api/pkg/engine"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads and decodes JSON from a request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrGameNotFound, http.StatusNotFound},
	{service.ErrSaveNotFound, http.StatusNotFound},
	{service.ErrNotCreator, http.StatusForbidden},
	{service.ErrNotInGame, http.StatusForbidden},
	{service.ErrNotYourTurn, http.StatusForbidden},
	{service.ErrSeatTaken, http.StatusConflict},
	{service.ErrGameNotWaiting, http.StatusConflict},
	{service.ErrGameNotActive, http.StatusConflict},
	{service.ErrInvalidPower, http.StatusBadRequest},
	{service.ErrInvalidTimeout, http.StatusBadRequest},
	{service.ErrInvalidSeed, http.StatusBadRequest},
	{service.ErrNoHumanSeats, http.StatusBadRequest},
	{service.ErrInvalidSave, http.StatusUnprocessableEntity},
	{engine.ErrNotYourTurn, http.StatusForbidden},
	{engine.ErrWrongPhase, http.StatusConflict},
	{engine.ErrCannotUndo, http.StatusConflict},
	{engine.ErrInsufficientIPCs, http.StatusUnprocessableEntity},
	{engine.ErrIllegalMove, http.StatusUnprocessableEntity},
	{engine.ErrInvalidAction, http.StatusUnprocessableEntity},
	{engine.ErrUnitNotFound, http.StatusUnprocessableEntity},
	{engine.ErrTerritoryNotFound, http.StatusUnprocessableEntity},
}

// writeServiceError maps service and engine errors to HTTP statuses. Engine
// rule violations carry their kind so clients can react to it.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			if kind := engine.KindOf(err); kind != "" {
				writeJSON(w, es.status, map[string]string{"error": err.Error(), "kind": string(kind)})
				return
			}
			writeError(w, es.status, err.Error())
			return
		}
	}
	log.Error().Err(err).Msg("Unhandled service error")
	writeError(w, http.StatusInternalServerError, "internal server error")
}
