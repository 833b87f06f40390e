package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "cinetrack_session"

type contextKey string

const userIDContextKey contextKey = "userID"

// SessionManager wraps the cookie store that carries the authenticated owner
// identity. The cookie holds only the user id; everything else lives server-side.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager creates a manager signing cookies with the given key.
func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// SetUser binds the session cookie to the user.
func (s *SessionManager) SetUser(w http.ResponseWriter, r *http.Request, userID string) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values["userID"] = userID
	return session.Save(r, w)
}

// Clear drops the session cookie.
func (s *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, "userID")
	return session.Save(r, w)
}

// Middleware resolves the session into the request context. It never rejects;
// each operation decides whether a missing identity is an authorization failure.
func (s *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, sessionName)
		if err != nil {
			// a stale or tampered cookie is treated as no session
			log.Printf("[session] decode failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}
		if userID, ok := session.Values["userID"].(string); ok && userID != "" {
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// userIDFromContext returns the resolved owner identity, or "" when the
// request carries no session.
func userIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDContextKey).(string); ok {
		return v
	}
	return ""
}
