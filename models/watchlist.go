package models

import (
	"fmt"
	"time"
)

// Media types supported by the catalog.
const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
)

// ValidMediaType reports whether t is one of the supported media types.
func ValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeSeries
}

// WatchlistRecord is one row of viewing state per (user, external title, media type).
// A row existing does not imply list membership; InWatchlist is the membership flag,
// so watched history survives removal from the active list.
type WatchlistRecord struct {
	UserID      string  `json:"-"`
	ExternalID  string  `json:"externalId"`
	MediaType   string  `json:"mediaType"` // movie | series
	Title       string  `json:"title"`
	PosterPath  string  `json:"posterPath,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
	InWatchlist bool    `json:"inWatchlist"`
	IsWatched   bool    `json:"isWatched"`
	InProgress  bool    `json:"inProgress"`
	// WatchedEpisodes holds "{season}-{episode}" keys. Set semantics: entries are
	// unique even though the wire representation is an ordered array. Only
	// meaningful for series.
	WatchedEpisodes []string  `json:"watchedEpisodes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Key returns a stable identifier combining media type and external ID.
func (r WatchlistRecord) Key() string {
	return r.MediaType + ":" + r.ExternalID
}

// HasEpisode reports whether the given episode key is in the watched set.
func (r WatchlistRecord) HasEpisode(key string) bool {
	for _, k := range r.WatchedEpisodes {
		if k == key {
			return true
		}
	}
	return false
}

// WatchlistPatch carries a partial mutation. Nil fields were not sent and must be
// left untouched on an existing row. Keeping InProgress consistent with IsWatched
// is a caller contract, not enforced by storage.
type WatchlistPatch struct {
	ExternalID      string    `json:"externalId"`
	MediaType       string    `json:"mediaType"`
	Title           *string   `json:"title,omitempty"`
	PosterPath      *string   `json:"posterPath,omitempty"`
	VoteAverage     *float64  `json:"voteAverage,omitempty"`
	InWatchlist     *bool     `json:"inWatchlist,omitempty"`
	IsWatched       *bool     `json:"isWatched,omitempty"`
	InProgress      *bool     `json:"inProgress,omitempty"`
	WatchedEpisodes *[]string `json:"watchedEpisodes,omitempty"`
}

// Key returns a stable identifier combining media type and external ID.
func (p WatchlistPatch) Key() string {
	return p.MediaType + ":" + p.ExternalID
}

// EpisodeKey builds the "{season}-{episode}" key stored in WatchedEpisodes.
// Season and episode are 1-based; season 0 (specials) is excluded from
// bulk-mark operations.
func EpisodeKey(season, episode int) string {
	return fmt.Sprintf("%d-%d", season, episode)
}
