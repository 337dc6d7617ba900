package httpapi

import (
	"net/http"
)

// Envelope mirrors the upstream API's response shape so the console's own
// JSON surface stays uniform with what the backend returns.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, &Envelope{Status: "success", Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, &Envelope{Status: "success", Data: data})
}

func WriteFailure(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, &Envelope{Status: "error", Message: message})
}
