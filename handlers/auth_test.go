package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"cinetrack/internal/database"
	"cinetrack/services/users"
	"cinetrack/services/watchlist"
	"cinetrack/services/watchstate"
	"cinetrack/utils"
)

func setupAuthRouter(t *testing.T) *mux.Router {
	t.Helper()

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "catalog.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	watchlistService := watchlist.NewService(db.Watchlist)
	stateManager := watchstate.NewManager(watchlistService, &fixedRoster{})
	usersService := users.NewService(db.Users, nil)
	sessions := NewSessionManager("test-session-key")
	handler := NewAuthHandler(usersService, sessions, stateManager)

	r := utils.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(sessions.Middleware)
	api.HandleFunc("/auth/register", handler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", handler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", handler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", handler.Me).Methods(http.MethodGet)
	return r
}

func postJSON(router *mux.Router, target string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(payload)
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEstablishesSession(t *testing.T) {
	router := setupAuthRouter(t)

	rec := postJSON(router, "/api/auth/register", map[string]any{
		"email": "viewer@example.com", "username": "viewer", "password": "long-enough-password",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)

	if meRec.Code != http.StatusOK {
		t.Fatalf("me: expected 200 with session, got %d", meRec.Code)
	}
	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(meRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if resp.User.Email != "viewer@example.com" {
		t.Fatalf("unexpected account: %+v", resp.User)
	}
}

func TestMeWithoutSessionIs401(t *testing.T) {
	router := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := setupAuthRouter(t)

	rec := postJSON(router, "/api/auth/register", map[string]any{
		"email": "viewer@example.com", "username": "viewer", "password": "long-enough-password",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	rec = postJSON(router, "/api/auth/login", map[string]any{
		"email": "viewer@example.com", "password": "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	router := setupAuthRouter(t)

	rec := postJSON(router, "/api/auth/register", map[string]any{
		"email": "viewer@example.com", "username": "viewer", "password": "long-enough-password",
	}, nil)
	cookies := rec.Result().Cookies()

	rec = postJSON(router, "/api/auth/logout", map[string]any{}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}

	// the cleared cookie must no longer authenticate
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	if meRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", meRec.Code)
	}
}
