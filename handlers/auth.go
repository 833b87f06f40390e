package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"cinetrack/services/users"
	"cinetrack/services/watchstate"
)

// AuthHandler handles registration, login and session lifecycle endpoints.
type AuthHandler struct {
	usersService *users.Service
	sessions     *SessionManager
	stateManager *watchstate.Manager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(usersService *users.Service, sessions *SessionManager, stateManager *watchstate.Manager) *AuthHandler {
	return &AuthHandler{
		usersService: usersService,
		sessions:     sessions,
		stateManager: stateManager,
	}
}

// Register creates an account and establishes a session.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.usersService.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.sessions.SetUser(w, r, user.ID); err != nil {
		jsonError(w, "Failed to establish session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := h.stateManager.StartSession(r.Context(), user.ID); err != nil {
		log.Printf("[auth] watchlist mirror init failed for %s: %v", user.ID, err)
	}

	jsonResponse(w, http.StatusCreated, map[string]any{"user": user})
}

// Login authenticates and establishes a session; the watchlist mirror is
// populated with a full fetch as part of session establishment.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.usersService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.sessions.SetUser(w, r, user.ID); err != nil {
		jsonError(w, "Failed to establish session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := h.stateManager.StartSession(r.Context(), user.ID); err != nil {
		log.Printf("[auth] watchlist mirror init failed for %s: %v", user.ID, err)
	}

	jsonResponse(w, http.StatusOK, map[string]any{"user": user})
}

// Logout tears down the session and its watchlist mirror.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if userID := userIDFromContext(r.Context()); userID != "" {
		h.stateManager.EndSession(userID)
	}
	if err := h.sessions.Clear(w, r); err != nil {
		jsonError(w, "Failed to clear session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// Me returns the authenticated account.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.usersService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"user": user})
}

// Verify matches the emailed verification code.
// POST /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.usersService.Verify(r.Context(), userID, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}
