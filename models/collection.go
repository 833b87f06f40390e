package models

import "time"

// CollectionItem is a lightweight reference to a catalog title inside a collection.
// Display metadata is denormalized so collection pages render without extra
// provider round-trips.
type CollectionItem struct {
	ExternalID  string  `json:"externalId"`
	MediaType   string  `json:"mediaType"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"posterPath,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
}

// Collection is a user-named grouping of titles, independent of watch state.
// Collections live in process memory only; they have no server-side durability.
type Collection struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Items       []CollectionItem `json:"items"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// HasItem reports whether the collection already contains the given title.
func (c Collection) HasItem(externalID, mediaType string) bool {
	for _, it := range c.Items {
		if it.ExternalID == externalID && it.MediaType == mediaType {
			return true
		}
	}
	return false
}
