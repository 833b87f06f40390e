package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"cinetrack/models"
	"cinetrack/services/collections"
	"cinetrack/utils"
)

func setupCollectionsRouter() *mux.Router {
	handler := NewCollectionsHandler(collections.NewManager())

	r := utils.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/collections", handler.List).Methods(http.MethodGet)
	api.HandleFunc("/collections", handler.Create).Methods(http.MethodPost)
	api.HandleFunc("/collections/{collectionID}", handler.Get).Methods(http.MethodGet)
	api.HandleFunc("/collections/{collectionID}", handler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/collections/{collectionID}/items", handler.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/collections/{collectionID}/items/{mediaType}/{externalID}", handler.RemoveItem).Methods(http.MethodDelete)
	return r
}

func decodeCollection(t *testing.T, rec *httptest.ResponseRecorder) models.Collection {
	t.Helper()
	var resp struct {
		Collection models.Collection `json:"collection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Collection
}

func TestCollectionsRequireIdentity(t *testing.T) {
	router := setupCollectionsRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateCollectionAndAddItemImmediately(t *testing.T) {
	router := setupCollectionsRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/collections", map[string]any{
		"name": "Heist Movies",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	created := decodeCollection(t, rec)
	if created.ID == "" {
		t.Fatalf("expected id on created collection")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/collections/"+created.ID+"/items", map[string]any{
		"externalId": "603", "mediaType": "movie", "title": "The Matrix",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := decodeCollection(t, rec); len(got.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(got.Items))
	}
}

func TestCreateCollectionRequiresName(t *testing.T) {
	router := setupCollectionsRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/collections", map[string]any{
		"name": "   ",
	}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnknownCollectionIs404(t *testing.T) {
	router := setupCollectionsRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/collections/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/collections/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete: expected 404, got %d", rec.Code)
	}
}

func TestAddItemValidatesIdentity(t *testing.T) {
	router := setupCollectionsRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/collections", map[string]any{"name": "List"}))
	created := decodeCollection(t, rec)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/collections/"+created.ID+"/items", map[string]any{
		"mediaType": "movie",
	}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing externalId, got %d", rec.Code)
	}
}
