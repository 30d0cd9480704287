// Package handler wires the HTTP surface.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/johndosdos/tindahan/internal/model"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("internal/handler: failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses. Unknown errors
// become a plain 500 without leaking internals.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, model.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	case errors.Is(err, model.ErrUserExists), errors.Is(err, model.ErrChatExists):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "Conflict"})
	default:
		log.Printf("internal/handler: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	return json.NewDecoder(r.Body).Decode(v)
}
