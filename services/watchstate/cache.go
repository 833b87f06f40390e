package watchstate

import (
	"context"
	"sort"
	"sync"

	"cinetrack/models"
	"cinetrack/services/watchlist"
)

// Reconciler is the subset of the watchlist service the mirror drives. Every
// mutation returns the server's view of the row, which becomes the new truth
// for that row in the mirror.
type Reconciler interface {
	FetchAll(ctx context.Context, userID string) ([]models.WatchlistRecord, error)
	Add(ctx context.Context, userID string, req watchlist.AddRequest) (models.WatchlistRecord, error)
	Remove(ctx context.Context, userID string, req watchlist.AddRequest) (models.WatchlistRecord, error)
	Patch(ctx context.Context, userID string, patch models.WatchlistPatch) (models.WatchlistRecord, error)
	Delete(ctx context.Context, userID, externalID, mediaType string) error
}

// EpisodeRoster resolves the full episode key set of a series from the
// metadata provider. Needed only when marking an entire series watched.
type EpisodeRoster interface {
	EpisodeKeys(ctx context.Context, externalID string) ([]string, error)
}

// Display carries optional denormalized metadata sent along with a mutation so
// newly created rows render without a provider round-trip.
type Display struct {
	Title       string  `json:"title,omitempty"`
	PosterPath  string  `json:"posterPath,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
}

// Cache is a session-scoped mirror of one owner's watchlist rows. It is
// refreshed wholesale on session start and updated by replacing rows in place
// with mutation responses; a failed mutation leaves it untouched, so it only
// ever reflects confirmed server state.
type Cache struct {
	userID string
	svc    Reconciler
	roster EpisodeRoster

	mu      sync.RWMutex
	records map[string]models.WatchlistRecord
}

// NewCache creates an empty mirror for the owner. Call Refresh to populate it.
func NewCache(userID string, svc Reconciler, roster EpisodeRoster) *Cache {
	return &Cache{
		userID:  userID,
		svc:     svc,
		roster:  roster,
		records: make(map[string]models.WatchlistRecord),
	}
}

// Refresh replaces the mirror wholesale with the server's current state.
func (c *Cache) Refresh(ctx context.Context) error {
	records, err := c.svc.FetchAll(ctx, c.userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]models.WatchlistRecord, len(records))
	for _, rec := range records {
		c.records[rec.Key()] = rec
	}
	return nil
}

// Clear drops all mirrored state. Called on session end.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]models.WatchlistRecord)
}

// merge replaces the row for the record's key with the server response.
func (c *Cache) merge(rec models.WatchlistRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rec.Key()] = rec
}

// Get returns the mirrored row for the tuple, with presence flag.
func (c *Cache) Get(externalID, mediaType string) (models.WatchlistRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[mediaType+":"+externalID]
	return rec, ok
}

// All returns every mirrored row, most recently updated first.
func (c *Cache) All() []models.WatchlistRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLocked(func(models.WatchlistRecord) bool { return true })
}

// Saved returns the rows currently on the active list.
func (c *Cache) Saved() []models.WatchlistRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLocked(func(r models.WatchlistRecord) bool { return r.InWatchlist })
}

// InProgress returns non-watched rows with partial progress, most recent first.
func (c *Cache) InProgress() []models.WatchlistRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLocked(func(r models.WatchlistRecord) bool {
		return !r.IsWatched && (r.InProgress || len(r.WatchedEpisodes) > 0)
	})
}

func (c *Cache) sortedLocked(keep func(models.WatchlistRecord) bool) []models.WatchlistRecord {
	out := make([]models.WatchlistRecord, 0, len(c.records))
	for _, rec := range c.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// IsSaved reports whether the title is on the active list.
func (c *Cache) IsSaved(externalID, mediaType string) bool {
	rec, ok := c.Get(externalID, mediaType)
	return ok && rec.InWatchlist
}

// IsWatched reports whether the title is fully watched.
func (c *Cache) IsWatched(externalID, mediaType string) bool {
	rec, ok := c.Get(externalID, mediaType)
	return ok && rec.IsWatched
}

// WatchedEpisodeCount returns the number of tracked episodes for a series.
func (c *Cache) WatchedEpisodeCount(externalID string) int {
	rec, ok := c.Get(externalID, models.MediaTypeSeries)
	if !ok {
		return 0
	}
	return len(rec.WatchedEpisodes)
}

// AddToList saves the title to the active list.
func (c *Cache) AddToList(ctx context.Context, externalID, mediaType string, display Display) (models.WatchlistRecord, error) {
	rec, err := c.svc.Add(ctx, c.userID, addRequest(externalID, mediaType, display))
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	c.merge(rec)
	return rec, nil
}

// RemoveFromList drops the title from the active list, keeping watched history.
func (c *Cache) RemoveFromList(ctx context.Context, externalID, mediaType string) (models.WatchlistRecord, error) {
	rec, err := c.svc.Remove(ctx, c.userID, watchlist.AddRequest{ExternalID: externalID, MediaType: mediaType})
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	c.merge(rec)
	return rec, nil
}

// ToggleEpisode flips one "{season}-{episode}" key. The whole resulting set is
// sent in a single patch together with the derived inProgress flag (true iff
// the set is non-empty). It deliberately does not touch inWatchlist: tracking
// progress on an unsaved series must not save it.
func (c *Cache) ToggleEpisode(ctx context.Context, externalID string, season, episode int, display Display) (models.WatchlistRecord, error) {
	key := models.EpisodeKey(season, episode)

	current, _ := c.Get(externalID, models.MediaTypeSeries)
	episodes := make([]string, 0, len(current.WatchedEpisodes)+1)
	found := false
	for _, k := range current.WatchedEpisodes {
		if k == key {
			found = true
			continue
		}
		episodes = append(episodes, k)
	}
	if !found {
		episodes = append(episodes, key)
	}

	inProgress := len(episodes) > 0
	patch := displayPatch(externalID, models.MediaTypeSeries, display)
	patch.WatchedEpisodes = &episodes
	patch.InProgress = &inProgress

	rec, err := c.svc.Patch(ctx, c.userID, patch)
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	c.merge(rec)
	return rec, nil
}

// SetSeriesWatched marks or unmarks an entire series. Marking resolves the full
// episode roster from the metadata provider (specials excluded); unmarking
// clears the set without needing the roster.
func (c *Cache) SetSeriesWatched(ctx context.Context, externalID string, watched bool, display Display) (models.WatchlistRecord, error) {
	var episodes []string
	if watched {
		keys, err := c.roster.EpisodeKeys(ctx, externalID)
		if err != nil {
			return models.WatchlistRecord{}, err
		}
		episodes = keys
	} else {
		episodes = []string{}
	}

	inProgress := false
	patch := displayPatch(externalID, models.MediaTypeSeries, display)
	patch.WatchedEpisodes = &episodes
	patch.IsWatched = &watched
	patch.InProgress = &inProgress

	rec, err := c.svc.Patch(ctx, c.userID, patch)
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	c.merge(rec)
	return rec, nil
}

// Apply forwards an arbitrary field-scoped patch and mirrors the result.
func (c *Cache) Apply(ctx context.Context, patch models.WatchlistPatch) (models.WatchlistRecord, error) {
	rec, err := c.svc.Patch(ctx, c.userID, patch)
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	c.merge(rec)
	return rec, nil
}

// ToggleMovieWatched flips the watched flag on a movie, creating the row when
// the title was never saved.
func (c *Cache) ToggleMovieWatched(ctx context.Context, externalID string, display Display) (models.WatchlistRecord, error) {
	current, _ := c.Get(externalID, models.MediaTypeMovie)
	watched := !current.IsWatched

	patch := displayPatch(externalID, models.MediaTypeMovie, display)
	patch.IsWatched = &watched

	rec, err := c.svc.Patch(ctx, c.userID, patch)
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	c.merge(rec)
	return rec, nil
}

// DeleteRow removes the row outright on the server and from the mirror.
func (c *Cache) DeleteRow(ctx context.Context, externalID, mediaType string) error {
	if err := c.svc.Delete(ctx, c.userID, externalID, mediaType); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, mediaType+":"+externalID)
	return nil
}

func addRequest(externalID, mediaType string, display Display) watchlist.AddRequest {
	req := watchlist.AddRequest{ExternalID: externalID, MediaType: mediaType}
	if display.Title != "" {
		req.Title = &display.Title
	}
	if display.PosterPath != "" {
		req.PosterPath = &display.PosterPath
	}
	if display.VoteAverage != 0 {
		req.VoteAverage = &display.VoteAverage
	}
	return req
}

func displayPatch(externalID, mediaType string, display Display) models.WatchlistPatch {
	patch := models.WatchlistPatch{ExternalID: externalID, MediaType: mediaType}
	if display.Title != "" {
		patch.Title = &display.Title
	}
	if display.PosterPath != "" {
		patch.PosterPath = &display.PosterPath
	}
	if display.VoteAverage != 0 {
		patch.VoteAverage = &display.VoteAverage
	}
	return patch
}
