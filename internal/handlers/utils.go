package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type contextKey string

// contextEmailKey carries the authenticated user's email through the
// request context after RequireSession has validated the cookie.
const contextEmailKey contextKey = "email"

var errNoSession = errors.New("no session in context")

func emailFromContext(r *http.Request) (string, error) {
	email, ok := r.Context().Value(contextEmailKey).(string)
	if !ok || email == "" {
		return "", errNoSession
	}
	return email, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServerError logs the full error server-side and returns a generic
// message so internal details never leak to clients.
func writeServerError(w http.ResponseWriter, message string, err error) {
	log.Printf("%s: %v", message, err)
	writeError(w, http.StatusInternalServerError, message)
}
