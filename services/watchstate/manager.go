package watchstate

import (
	"context"
	"sync"
)

// Manager owns the per-user mirrors. A mirror is created and populated when a
// session is established and torn down when the session ends; nothing here is
// ambient global state.
type Manager struct {
	svc    Reconciler
	roster EpisodeRoster

	mu     sync.Mutex
	caches map[string]*Cache
}

// NewManager creates a manager building mirrors from the given collaborators.
func NewManager(svc Reconciler, roster EpisodeRoster) *Manager {
	return &Manager{
		svc:    svc,
		roster: roster,
		caches: make(map[string]*Cache),
	}
}

// StartSession creates (or re-populates) the owner's mirror from a full fetch.
func (m *Manager) StartSession(ctx context.Context, userID string) (*Cache, error) {
	m.mu.Lock()
	cache, ok := m.caches[userID]
	if !ok {
		cache = NewCache(userID, m.svc, m.roster)
		m.caches[userID] = cache
	}
	m.mu.Unlock()

	if err := cache.Refresh(ctx); err != nil {
		return nil, err
	}
	return cache, nil
}

// ForUser returns the live mirror for the owner. Sessions that outlived a
// process restart get a fresh, lazily populated mirror.
func (m *Manager) ForUser(ctx context.Context, userID string) (*Cache, error) {
	m.mu.Lock()
	cache, ok := m.caches[userID]
	m.mu.Unlock()
	if ok {
		return cache, nil
	}
	return m.StartSession(ctx, userID)
}

// EndSession clears and discards the owner's mirror.
func (m *Manager) EndSession(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cache, ok := m.caches[userID]; ok {
		cache.Clear()
		delete(m.caches, userID)
	}
}
