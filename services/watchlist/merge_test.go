package watchlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinetrack/models"
)

func strPtr(s string) *string    { return &s }
func boolPtr(b bool) *bool       { return &b }
func f64Ptr(f float64) *float64  { return &f }
func setPtr(s []string) *[]string { return &s }

func TestMergeFieldsCreatesDefaultsForMissingFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	patch := models.WatchlistPatch{
		ExternalID:  "603",
		MediaType:   models.MediaTypeMovie,
		InWatchlist: boolPtr(true),
	}

	rec := mergeFields(nil, "u1", patch, now)

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "603", rec.ExternalID)
	assert.Equal(t, models.MediaTypeMovie, rec.MediaType)
	assert.True(t, rec.InWatchlist)
	assert.False(t, rec.IsWatched)
	assert.False(t, rec.InProgress)
	assert.Equal(t, "Unknown", rec.Title)
	assert.Empty(t, rec.WatchedEpisodes)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestMergeFieldsLeavesAbsentFieldsUntouched(t *testing.T) {
	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(24 * time.Hour)
	existing := models.WatchlistRecord{
		UserID:          "u1",
		ExternalID:      "1399",
		MediaType:       models.MediaTypeSeries,
		Title:           "Game of Thrones",
		InWatchlist:     true,
		IsWatched:       false,
		InProgress:      true,
		WatchedEpisodes: []string{"1-1"},
		CreatedAt:       created,
		UpdatedAt:       created,
	}

	// Patch only the episode set; membership and watched flags must survive.
	patch := models.WatchlistPatch{
		ExternalID:      "1399",
		MediaType:       models.MediaTypeSeries,
		WatchedEpisodes: setPtr([]string{"1-1", "1-2"}),
	}

	rec := mergeFields(&existing, "u1", patch, now)

	assert.True(t, rec.InWatchlist)
	assert.False(t, rec.IsWatched)
	assert.True(t, rec.InProgress)
	assert.Equal(t, "Game of Thrones", rec.Title)
	assert.Equal(t, []string{"1-1", "1-2"}, rec.WatchedEpisodes)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestMergeFieldsRefreshesDisplayMetadata(t *testing.T) {
	now := time.Now().UTC()
	existing := models.WatchlistRecord{
		UserID:     "u1",
		ExternalID: "603",
		MediaType:  models.MediaTypeMovie,
		Title:      "Unknown",
		IsWatched:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	patch := models.WatchlistPatch{
		ExternalID:  "603",
		MediaType:   models.MediaTypeMovie,
		Title:       strPtr("The Matrix"),
		PosterPath:  strPtr("/matrix.jpg"),
		VoteAverage: f64Ptr(8.2),
	}

	rec := mergeFields(&existing, "u1", patch, now)

	require.Equal(t, "The Matrix", rec.Title)
	require.Equal(t, "/matrix.jpg", rec.PosterPath)
	require.Equal(t, 8.2, rec.VoteAverage)
	require.True(t, rec.IsWatched, "metadata refresh must not clear watched state")
}

func TestMergeFieldsDeduplicatesEpisodeSet(t *testing.T) {
	now := time.Now().UTC()
	patch := models.WatchlistPatch{
		ExternalID:      "1399",
		MediaType:       models.MediaTypeSeries,
		WatchedEpisodes: setPtr([]string{"1-1", "1-2", "1-1", "2-1", "1-2"}),
	}

	rec := mergeFields(nil, "u1", patch, now)

	assert.Equal(t, []string{"1-1", "1-2", "2-1"}, rec.WatchedEpisodes)
}

func TestMergeFieldsEmptySetClearsEpisodes(t *testing.T) {
	now := time.Now().UTC()
	existing := models.WatchlistRecord{
		UserID:          "u1",
		ExternalID:      "1399",
		MediaType:       models.MediaTypeSeries,
		WatchedEpisodes: []string{"1-1", "1-2"},
	}

	patch := models.WatchlistPatch{
		ExternalID:      "1399",
		MediaType:       models.MediaTypeSeries,
		WatchedEpisodes: setPtr([]string{}),
	}

	rec := mergeFields(&existing, "u1", patch, now)

	assert.Empty(t, rec.WatchedEpisodes)
	assert.NotNil(t, rec.WatchedEpisodes)
}
