package utils

import (
	"encoding/json"
	"net/http"

	"cropshare/apperror"
)

type M map[string]interface{}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"message": msg})
}

// RespondError maps a domain error to its HTTP status and writes the
// message field the frontend surfaces directly.
func RespondError(w http.ResponseWriter, err error) {
	RespondWithJSON(w, apperror.Status(err), map[string]string{"message": err.Error()})
}
