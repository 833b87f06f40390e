package collections

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinetrack/models"
)

var (
	// ErrNameRequired is returned when creating a collection without a name.
	ErrNameRequired = errors.New("collection name required")
	// ErrNotFound is returned when a collection id does not resolve.
	ErrNotFound = errors.New("collection not found")
)

// Store holds one owner's collections in process memory. Collections have no
// server-side durability: a restart clears them, mirroring the original's
// client-storage lifecycle. Independent of watchlist state entirely.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*models.Collection
	order       []string
	now         func() time.Time
}

// NewStore creates an empty collection store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*models.Collection),
		now:         time.Now,
	}
}

// Create makes a new collection and returns it synchronously, so "create and
// add the current title" works as one gesture without a lookup round-trip.
func (s *Store) Create(name, description string) (models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Collection{}, ErrNameRequired
	}

	c := &models.Collection{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Items:       []models.CollectionItem{},
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[c.ID] = c
	s.order = append(s.order, c.ID)
	return *c, nil
}

// Delete removes the collection and all membership data. Irreversible.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return ErrNotFound
	}
	delete(s.collections, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the collection by id with a presence flag; unknown ids are an
// absent signal, not an error, so callers can 404 cleanly.
func (s *Store) Get(id string) (models.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[id]
	if !ok {
		return models.Collection{}, false
	}
	return *c, true
}

// List returns all collections in creation order.
func (s *Store) List() []models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Collection, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.collections[id])
	}
	return out
}

// AddItem appends the title to the collection. Adding an item that is already
// a member is a no-op.
func (s *Store) AddItem(id string, item models.CollectionItem) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok {
		return models.Collection{}, ErrNotFound
	}
	if !c.HasItem(item.ExternalID, item.MediaType) {
		c.Items = append(c.Items, item)
	}
	return *c, nil
}

// RemoveItem drops the title from the collection. Removing a non-member is a
// no-op.
func (s *Store) RemoveItem(id, externalID, mediaType string) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok {
		return models.Collection{}, ErrNotFound
	}
	for i, it := range c.Items {
		if it.ExternalID == externalID && it.MediaType == mediaType {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	return *c, nil
}

// Manager hands out per-owner stores.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{stores: make(map[string]*Store)}
}

// ForUser returns the owner's store, creating it on first use.
func (m *Manager) ForUser(userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[userID]
	if !ok {
		store = NewStore()
		m.stores[userID] = store
	}
	return store
}
