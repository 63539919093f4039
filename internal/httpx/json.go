package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

type responseEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
	Time    string `json:"time,omitempty"`
}

// failureBody is the fixed shape written by the auth gate.
type failureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeHeaders(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func WriteJSON(w http.ResponseWriter, status int, message string, v any) {
	writeHeaders(w, status)
	_ = json.NewEncoder(w).Encode(responseEnvelope{
		Success: true,
		Message: message,
		Data:    v,
		Time:    now(),
	})
}

func WriteError[T any](w http.ResponseWriter, status int, errBody ErrorResponse[T]) {
	writeHeaders(w, status)
	_ = json.NewEncoder(w).Encode(responseEnvelope{
		Success: false,
		Error:   errBody,
		Time:    now(),
	})
}

// WriteFailure writes {"success": false, "error": msg} and nothing else.
func WriteFailure(w http.ResponseWriter, status int, msg string) {
	writeHeaders(w, status)
	_ = json.NewEncoder(w).Encode(failureBody{Error: msg})
}
