package watchlist

import (
	"time"

	"cinetrack/models"
)

// defaultTitle is used when a row is created without display metadata.
const defaultTitle = "Unknown"

// mergeFields applies a partial patch on top of an existing row, or on top of a
// default row when existing is nil. Only fields present in the patch are
// written; everything else keeps its current value. This is the contract that
// lets independent UI gestures (toggle-watchlist, toggle-watched, toggle one
// episode) mutate the same row without clobbering each other's fields.
func mergeFields(existing *models.WatchlistRecord, userID string, patch models.WatchlistPatch, now time.Time) models.WatchlistRecord {
	var rec models.WatchlistRecord
	if existing != nil {
		rec = *existing
	} else {
		rec = models.WatchlistRecord{
			UserID:          userID,
			ExternalID:      patch.ExternalID,
			MediaType:       patch.MediaType,
			Title:           defaultTitle,
			WatchedEpisodes: []string{},
			CreatedAt:       now,
		}
	}

	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.PosterPath != nil {
		rec.PosterPath = *patch.PosterPath
	}
	if patch.VoteAverage != nil {
		rec.VoteAverage = *patch.VoteAverage
	}
	if patch.InWatchlist != nil {
		rec.InWatchlist = *patch.InWatchlist
	}
	if patch.IsWatched != nil {
		rec.IsWatched = *patch.IsWatched
	}
	if patch.InProgress != nil {
		rec.InProgress = *patch.InProgress
	}
	if patch.WatchedEpisodes != nil {
		rec.WatchedEpisodes = dedupeEpisodes(*patch.WatchedEpisodes)
	}

	rec.UpdatedAt = now
	return rec
}

// dedupeEpisodes restores set semantics on the wire's ordered array, keeping
// first-seen order.
func dedupeEpisodes(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
