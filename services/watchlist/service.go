package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinetrack/internal/database"
	"cinetrack/models"
)

var (
	// ErrUnauthorized is returned when no owner identity was resolved.
	ErrUnauthorized = errors.New("owner identity required")
	// ErrValidation is returned when identifying fields are missing or malformed.
	ErrValidation = errors.New("invalid watchlist request")
	// ErrNotFound is returned by operations that require an existing row.
	ErrNotFound = errors.New("watchlist row not found")
)

// Service exposes mutation and query operations over watchlist rows. All writes
// are upserts keyed on (user, externalId, mediaType); callers never need to
// know whether a row already exists. Concurrent calls touching different
// fields compose safely; same-field races are last write wins.
type Service struct {
	repo *database.WatchlistRepository
	now  func() time.Time
}

// NewService creates a reconciliation service over the given repository.
func NewService(repo *database.WatchlistRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// FetchAll returns every row for the owner, most recently updated first.
func (s *Service) FetchAll(ctx context.Context, userID string) ([]models.WatchlistRecord, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

// FetchOne returns the row for the tuple if present. Absence is signalled by
// the bool, not an error, so the UI can render badge state before any mutation.
func (s *Service) FetchOne(ctx context.Context, userID, externalID, mediaType string) (models.WatchlistRecord, bool, error) {
	if userID == "" {
		return models.WatchlistRecord{}, false, ErrUnauthorized
	}
	if err := validateKey(externalID, mediaType); err != nil {
		return models.WatchlistRecord{}, false, err
	}
	return s.repo.Get(ctx, userID, externalID, mediaType)
}

// AddRequest carries the display metadata supplied when saving a title.
type AddRequest struct {
	ExternalID  string   `json:"externalId"`
	MediaType   string   `json:"mediaType"`
	Title       *string  `json:"title,omitempty"`
	PosterPath  *string  `json:"posterPath,omitempty"`
	VoteAverage *float64 `json:"voteAverage,omitempty"`
}

// Add saves the title to the active list. On an existing row only inWatchlist
// (and any supplied display metadata) changes; watched state is untouched.
func (s *Service) Add(ctx context.Context, userID string, req AddRequest) (models.WatchlistRecord, error) {
	return s.setMembership(ctx, userID, req, true)
}

// Remove drops the title from the active list without deleting the row, so
// watched history survives. Removing a title that has no row is an effective
// no-op but still upserts for API uniformity.
func (s *Service) Remove(ctx context.Context, userID string, req AddRequest) (models.WatchlistRecord, error) {
	return s.setMembership(ctx, userID, req, false)
}

func (s *Service) setMembership(ctx context.Context, userID string, req AddRequest, member bool) (models.WatchlistRecord, error) {
	patch := models.WatchlistPatch{
		ExternalID:  strings.TrimSpace(req.ExternalID),
		MediaType:   req.MediaType,
		Title:       req.Title,
		PosterPath:  req.PosterPath,
		VoteAverage: req.VoteAverage,
		InWatchlist: &member,
	}
	return s.Patch(ctx, userID, patch)
}

// Patch is the general-purpose mutator: it upserts the row, writing only the
// fields present in the patch. Fields not sent remain unchanged on an existing
// row and fall back to defaults when the row is being created.
func (s *Service) Patch(ctx context.Context, userID string, patch models.WatchlistPatch) (models.WatchlistRecord, error) {
	if userID == "" {
		return models.WatchlistRecord{}, ErrUnauthorized
	}
	patch.ExternalID = strings.TrimSpace(patch.ExternalID)
	if err := validateKey(patch.ExternalID, patch.MediaType); err != nil {
		return models.WatchlistRecord{}, err
	}

	existing, ok, err := s.repo.Get(ctx, userID, patch.ExternalID, patch.MediaType)
	if err != nil {
		return models.WatchlistRecord{}, err
	}

	var base *models.WatchlistRecord
	if ok {
		base = &existing
	}

	merged := mergeFields(base, userID, patch, s.now().UTC())
	if err := s.repo.Put(ctx, merged); err != nil {
		return models.WatchlistRecord{}, err
	}
	return merged, nil
}

// Delete removes the row entirely. Unlike Remove this is not an upsert: a
// missing row is a not-found error, never a silent no-op.
func (s *Service) Delete(ctx context.Context, userID, externalID, mediaType string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	externalID = strings.TrimSpace(externalID)
	if err := validateKey(externalID, mediaType); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, userID, externalID, mediaType)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func validateKey(externalID, mediaType string) error {
	if externalID == "" {
		return fmt.Errorf("%w: externalId required", ErrValidation)
	}
	if !models.ValidMediaType(mediaType) {
		return fmt.Errorf("%w: unknown media type %q", ErrValidation, mediaType)
	}
	return nil
}
