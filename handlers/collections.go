package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"cinetrack/models"
	"cinetrack/services/collections"
)

// CollectionsHandler exposes the owner's named collections.
type CollectionsHandler struct {
	manager *collections.Manager
}

// NewCollectionsHandler creates a new collections handler.
func NewCollectionsHandler(manager *collections.Manager) *CollectionsHandler {
	return &CollectionsHandler{manager: manager}
}

func (h *CollectionsHandler) store(w http.ResponseWriter, r *http.Request) (*collections.Store, bool) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		jsonError(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return h.manager.ForUser(userID), true
}

// List returns all of the owner's collections.
// GET /api/collections
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"collections": store.List()})
}

// Create makes a new collection and returns it immediately, so the client can
// add an item to it in the same gesture.
// POST /api/collections
func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := store.Create(req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"collection": created})
}

// Get returns one collection; unknown ids are a 404.
// GET /api/collections/{collectionID}
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	c, found := store.Get(mux.Vars(r)["collectionID"])
	if !found {
		jsonError(w, "Collection not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"collection": c})
}

// Delete removes the collection and its membership data.
// DELETE /api/collections/{collectionID}
func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	if err := store.Delete(mux.Vars(r)["collectionID"]); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// AddItem appends a title to the collection; duplicates are a no-op.
// POST /api/collections/{collectionID}/items
func (h *CollectionsHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var item models.CollectionItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if item.ExternalID == "" || !models.ValidMediaType(item.MediaType) {
		jsonError(w, "externalId and mediaType required", http.StatusBadRequest)
		return
	}

	c, err := store.AddItem(mux.Vars(r)["collectionID"], item)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"collection": c})
}

// RemoveItem drops a title from the collection; non-members are a no-op.
// DELETE /api/collections/{collectionID}/items/{mediaType}/{externalID}
func (h *CollectionsHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)

	c, err := store.RemoveItem(vars["collectionID"], vars["externalID"], vars["mediaType"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"collection": c})
}
