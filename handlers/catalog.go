package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinetrack/models"
	"cinetrack/services/catalog"
	"cinetrack/services/watchlist"
)

// MetadataProvider is the slice of the provider client the catalog endpoints use.
type MetadataProvider interface {
	Trending(ctx context.Context) ([]models.Title, error)
	Search(ctx context.Context, query string) ([]models.Title, error)
	MovieDetails(ctx context.Context, externalID string) (models.Title, error)
	SeriesDetails(ctx context.Context, externalID string) (models.Title, error)
}

// CatalogHandler proxies browse/search/calendar reads to the metadata provider.
type CatalogHandler struct {
	provider  MetadataProvider
	calendar  *catalog.Service
	watchlist *watchlist.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(provider MetadataProvider, calendar *catalog.Service, watchlistService *watchlist.Service) *CatalogHandler {
	return &CatalogHandler{provider: provider, calendar: calendar, watchlist: watchlistService}
}

// Trending returns this week's trending titles.
// GET /api/catalog/trending
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	titles, err := h.provider.Trending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"titles": titles})
}

// Search queries the provider across movies and series.
// GET /api/catalog/search?query=...
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		jsonError(w, "Query required", http.StatusBadRequest)
		return
	}

	titles, err := h.provider.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"titles": titles})
}

// Details returns one title with full metadata.
// GET /api/catalog/{mediaType}/{externalID}
func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var (
		title models.Title
		err   error
	)
	switch vars["mediaType"] {
	case models.MediaTypeMovie:
		title, err = h.provider.MovieDetails(r.Context(), vars["externalID"])
	case models.MediaTypeSeries:
		title, err = h.provider.SeriesDetails(r.Context(), vars["externalID"])
	default:
		jsonError(w, "Unknown media type", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"title": title})
}

// Calendar returns upcoming episodes for the owner's saved series. Items whose
// metadata fetch fails are simply absent from the result.
// GET /api/catalog/calendar
func (h *CatalogHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.watchlist.FetchAll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := h.calendar.UpcomingCalendar(r.Context(), records)
	jsonResponse(w, http.StatusOK, map[string]any{"entries": entries})
}
