package http

import (
	"encoding/json"
	"net/http"

	apperrors "vaxbook/pkg/errors"
)

// Response is the single envelope every endpoint answers with: a human readable
// message, a data payload, or both.
type Response struct {
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}

// WriteError renders err. AppErrors keep their status and message; anything else
// becomes a 500 with a generic message so internals never leak to clients.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := Response{Message: appErr.Message}
	if status < http.StatusInternalServerError {
		resp.Details = appErr.Details
	}
	return WriteJSON(w, status, resp)
}

func WriteMessage(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, Response{Message: message})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Response{Data: data})
}

func WriteCreated(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusCreated, Response{Message: message, Data: data})
}
