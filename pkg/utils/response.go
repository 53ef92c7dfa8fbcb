package utils

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes data as a JSON response. Encoding failures are logged
// rather than reported to the client, since the status line is already sent.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorBody{Error: message})
}
