package models

// Title is the normalized view of a catalog entry returned by the metadata
// provider. Optional fields may be empty; consumers must tolerate absence.
type Title struct {
	ExternalID   string   `json:"externalId"`
	MediaType    string   `json:"mediaType"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"posterPath,omitempty"`
	VoteAverage  float64  `json:"voteAverage,omitempty"`
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	FirstAirDate string   `json:"firstAirDate,omitempty"`
	Seasons      []Season `json:"seasons,omitempty"`
}

// Season summarizes one season of a series.
type Season struct {
	SeasonNumber int    `json:"seasonNumber"`
	Name         string `json:"name,omitempty"`
	EpisodeCount int    `json:"episodeCount"`
	AirDate      string `json:"airDate,omitempty"`
}

// Episode is a single episode of a series season.
type Episode struct {
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Name          string `json:"name,omitempty"`
	Overview      string `json:"overview,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
}

// CalendarEntry pairs a saved series with its next known episode for the
// upcoming view.
type CalendarEntry struct {
	ExternalID string  `json:"externalId"`
	Title      string  `json:"title"`
	PosterPath string  `json:"posterPath,omitempty"`
	Episode    Episode `json:"episode"`
}
