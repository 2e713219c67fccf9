package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error         string   `json:"error"`
	Message       string   `json:"message,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// WriteError writes an {error, message} response.
func WriteError(w http.ResponseWriter, r *http.Request, status int, errText, message string) {
	writeJSON(w, status, ErrorResponse{Error: errText, Message: message})
}

// WriteMissingFields writes the 400 response for absent required fields.
func WriteMissingFields(w http.ResponseWriter, r *http.Request, fields []string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:         "Missing required fields",
		Message:       "The following fields are required: " + strings.Join(fields, ", "),
		MissingFields: fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
