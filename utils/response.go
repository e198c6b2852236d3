package utils

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// RespondJSON writes payload as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// RespondError writes a {success:false, message} error body.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorResponse{Success: false, Message: message})
}

// RespondErrorDetail writes an error body with the underlying cause attached.
func RespondErrorDetail(w http.ResponseWriter, status int, message string, err error) {
	body := errorResponse{Success: false, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	RespondJSON(w, status, body)
}

// RespondInternal writes a 500 with the underlying error message included.
// Surfacing the cause is a debug convenience, not a stable contract.
func RespondInternal(w http.ResponseWriter, message string, err error) {
	RespondErrorDetail(w, http.StatusInternalServerError, message, err)
}
