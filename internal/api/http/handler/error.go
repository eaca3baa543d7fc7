package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keyfold/keyfold-server/internal/model"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps service sentinel errors to HTTP statuses. Unknown errors
// become 500 without leaking their text to the client.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, model.ErrBadRequest):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, model.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = err.Error()
	}

	writeJSON(w, status, errorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: message})
}
