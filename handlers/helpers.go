package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinetrack/services/collections"
	"cinetrack/services/users"
	"cinetrack/services/watchlist"
)

func jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognized is an upstream/storage failure surfaced as-is, undifferentiated.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watchlist.ErrUnauthorized):
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, users.ErrInvalidCredentials):
		jsonError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, watchlist.ErrValidation), errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, collections.ErrNameRequired):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, watchlist.ErrNotFound), errors.Is(err, collections.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		jsonError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, users.ErrEmailTaken):
		jsonError(w, "Email already registered", http.StatusConflict)
	default:
		jsonError(w, "Upstream failure: "+err.Error(), http.StatusBadGateway)
	}
}
