package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cinetrack/models"
	"cinetrack/services/watchlist"
	"cinetrack/services/watchstate"
)

// WatchlistHandler exposes the watchlist reconciliation operations and the
// composite progress gestures. Mutations go through the session's watch-state
// mirror so derived views stay coherent with confirmed server state.
type WatchlistHandler struct {
	service      *watchlist.Service
	stateManager *watchstate.Manager
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(service *watchlist.Service, stateManager *watchstate.Manager) *WatchlistHandler {
	return &WatchlistHandler{service: service, stateManager: stateManager}
}

func (h *WatchlistHandler) mirror(w http.ResponseWriter, r *http.Request) (*watchstate.Cache, string, bool) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, "", false
	}
	cache, err := h.stateManager.ForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return nil, "", false
	}
	return cache, userID, true
}

// List returns every record for the owner, most recently updated first.
// GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"records": cache.All()})
}

// InProgress returns the derived partially-watched view.
// GET /api/watchlist/in-progress
func (h *WatchlistHandler) InProgress(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"records": cache.InProgress()})
}

// GetOne returns badge state for a single title; absence is a normal response,
// not an error.
// GET /api/watchlist/{mediaType}/{externalID}
func (h *WatchlistHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	rec, found, err := h.service.FetchOne(r.Context(), userID, vars["externalID"], vars["mediaType"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		jsonResponse(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"found": true, "record": rec})
}

type membershipRequest struct {
	ExternalID string             `json:"externalId"`
	MediaType  string             `json:"mediaType"`
	Display    watchstate.Display `json:"display"`
}

// Add saves a title to the active list.
// POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := cache.AddToList(r.Context(), req.ExternalID, req.MediaType, req.Display)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"record": rec})
}

// Remove drops a title from the active list; watched history survives.
// POST /api/watchlist/remove
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := cache.RemoveFromList(r.Context(), req.ExternalID, req.MediaType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"record": rec})
}

// Patch applies an arbitrary field-scoped mutation; fields absent from the
// body are left untouched.
// PATCH /api/watchlist/{mediaType}/{externalID}
func (h *WatchlistHandler) Patch(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var patch models.WatchlistPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	patch.ExternalID = vars["externalID"]
	patch.MediaType = vars["mediaType"]

	rec, err := cache.Apply(r.Context(), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"record": rec})
}

// Delete removes the row outright. Missing rows are a 404, never a silent no-op.
// DELETE /api/watchlist/{mediaType}/{externalID}
func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	if err := cache.DeleteRow(r.Context(), vars["externalID"], vars["mediaType"]); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// ToggleEpisode flips one episode key on a series. The resulting set and the
// derived inProgress flag go out as a single patch; membership is untouched.
// POST /api/watchlist/series/{externalID}/episodes/toggle
func (h *WatchlistHandler) ToggleEpisode(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req struct {
		Season  int                `json:"season"`
		Episode int                `json:"episode"`
		Display watchstate.Display `json:"display"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Season < 0 || req.Episode < 1 {
		jsonError(w, "Season and episode must be positive", http.StatusBadRequest)
		return
	}

	rec, err := cache.ToggleEpisode(r.Context(), vars["externalID"], req.Season, req.Episode, req.Display)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"record": rec})
}

// SetSeriesWatched marks or unmarks an entire series; marking resolves the
// full episode roster from the metadata provider.
// POST /api/watchlist/series/{externalID}/watched
func (h *WatchlistHandler) SetSeriesWatched(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req struct {
		Watched bool               `json:"watched"`
		Display watchstate.Display `json:"display"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := cache.SetSeriesWatched(r.Context(), vars["externalID"], req.Watched, req.Display)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"record": rec})
}

// ToggleMovieWatched flips the watched flag on a movie.
// POST /api/watchlist/movie/{externalID}/watched/toggle
func (h *WatchlistHandler) ToggleMovieWatched(w http.ResponseWriter, r *http.Request) {
	cache, _, ok := h.mirror(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	var req struct {
		Display watchstate.Display `json:"display"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	rec, err := cache.ToggleMovieWatched(r.Context(), vars["externalID"], req.Display)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"record": rec})
}
