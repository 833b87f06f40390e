package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts all API endpoints under /api with session resolution.
func RegisterRoutes(r *mux.Router, sessions *SessionManager, auth *AuthHandler, wl *WatchlistHandler, col *CollectionsHandler, cat *CatalogHandler) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(sessions.Middleware)

	api.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", auth.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/verify", auth.Verify).Methods(http.MethodPost)

	api.HandleFunc("/watchlist", wl.List).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", wl.Add).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/remove", wl.Remove).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/in-progress", wl.InProgress).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/series/{externalID}/episodes/toggle", wl.ToggleEpisode).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/series/{externalID}/watched", wl.SetSeriesWatched).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/movie/{externalID}/watched/toggle", wl.ToggleMovieWatched).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/{mediaType}/{externalID}", wl.GetOne).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/{mediaType}/{externalID}", wl.Patch).Methods(http.MethodPatch)
	api.HandleFunc("/watchlist/{mediaType}/{externalID}", wl.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/collections", col.List).Methods(http.MethodGet)
	api.HandleFunc("/collections", col.Create).Methods(http.MethodPost)
	api.HandleFunc("/collections/{collectionID}", col.Get).Methods(http.MethodGet)
	api.HandleFunc("/collections/{collectionID}", col.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/collections/{collectionID}/items", col.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/collections/{collectionID}/items/{mediaType}/{externalID}", col.RemoveItem).Methods(http.MethodDelete)

	api.HandleFunc("/catalog/trending", cat.Trending).Methods(http.MethodGet)
	api.HandleFunc("/catalog/search", cat.Search).Methods(http.MethodGet)
	api.HandleFunc("/catalog/calendar", cat.Calendar).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{mediaType}/{externalID}", cat.Details).Methods(http.MethodGet)
}
