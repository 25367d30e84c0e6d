package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope mirrors the backend's response wrapper so clients of the local
// server see one shape everywhere.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a successful response.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failed response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message})
}

// ErrorData writes a failed response carrying details, e.g. field errors.
func ErrorData(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: false, Message: message, Data: data})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("respond: encode payload failed", zap.Error(err))
	}
}
