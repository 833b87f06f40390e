package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"cinetrack/models"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Client handles TMDB API interactions for catalog metadata. Responses are
// cached for an hour; the provider is eventually consistent so staleness of
// that order is acceptable. Optional fields (posters, air dates) may be absent
// and are passed through empty.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      make(map[string]cacheEntry),
		cacheTTL:   time.Hour,
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint. Used by tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// movieResponse is the subset of /movie/{id} the app consumes.
type movieResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// seriesResponse is the subset of /tv/{id} the app consumes.
type seriesResponse struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	FirstAirDate string  `json:"first_air_date"`
	Seasons      []struct {
		SeasonNumber int    `json:"season_number"`
		Name         string `json:"name"`
		EpisodeCount int    `json:"episode_count"`
		AirDate      string `json:"air_date"`
	} `json:"seasons"`
}

// seasonResponse is the subset of /tv/{id}/season/{n} the app consumes.
type seasonResponse struct {
	Episodes []struct {
		SeasonNumber  int    `json:"season_number"`
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		Overview      string `json:"overview"`
		AirDate       string `json:"air_date"`
	} `json:"episodes"`
}

// listResponse is the shape of trending/search endpoints.
type listResponse struct {
	Results []struct {
		ID           int     `json:"id"`
		MediaType    string  `json:"media_type"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		Overview     string  `json:"overview"`
		PosterPath   string  `json:"poster_path"`
		VoteAverage  float64 `json:"vote_average"`
		ReleaseDate  string  `json:"release_date"`
		FirstAirDate string  `json:"first_air_date"`
	} `json:"results"`
}

// MovieDetails fetches a single movie by its TMDB id.
func (c *Client) MovieDetails(ctx context.Context, externalID string) (models.Title, error) {
	var resp movieResponse
	if err := c.getJSON(ctx, "/movie/"+url.PathEscape(externalID), nil, &resp); err != nil {
		return models.Title{}, err
	}
	return models.Title{
		ExternalID:  strconv.Itoa(resp.ID),
		MediaType:   models.MediaTypeMovie,
		Title:       resp.Title,
		Overview:    resp.Overview,
		PosterPath:  resp.PosterPath,
		VoteAverage: resp.VoteAverage,
		ReleaseDate: resp.ReleaseDate,
	}, nil
}

// SeriesDetails fetches a single series, including its season summaries.
func (c *Client) SeriesDetails(ctx context.Context, externalID string) (models.Title, error) {
	var resp seriesResponse
	if err := c.getJSON(ctx, "/tv/"+url.PathEscape(externalID), nil, &resp); err != nil {
		return models.Title{}, err
	}
	title := models.Title{
		ExternalID:   strconv.Itoa(resp.ID),
		MediaType:    models.MediaTypeSeries,
		Title:        resp.Name,
		Overview:     resp.Overview,
		PosterPath:   resp.PosterPath,
		VoteAverage:  resp.VoteAverage,
		FirstAirDate: resp.FirstAirDate,
	}
	for _, s := range resp.Seasons {
		title.Seasons = append(title.Seasons, models.Season{
			SeasonNumber: s.SeasonNumber,
			Name:         s.Name,
			EpisodeCount: s.EpisodeCount,
			AirDate:      s.AirDate,
		})
	}
	return title, nil
}

// SeasonEpisodes fetches the episode list of one season.
func (c *Client) SeasonEpisodes(ctx context.Context, externalID string, season int) ([]models.Episode, error) {
	var resp seasonResponse
	path := fmt.Sprintf("/tv/%s/season/%d", url.PathEscape(externalID), season)
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	episodes := make([]models.Episode, 0, len(resp.Episodes))
	for _, e := range resp.Episodes {
		episodes = append(episodes, models.Episode{
			SeasonNumber:  e.SeasonNumber,
			EpisodeNumber: e.EpisodeNumber,
			Name:          e.Name,
			Overview:      e.Overview,
			AirDate:       e.AirDate,
		})
	}
	return episodes, nil
}

// EpisodeKeys resolves the full "{season}-{episode}" roster for a series,
// excluding season 0 specials. Consumed by mark-entire-series-watched.
func (c *Client) EpisodeKeys(ctx context.Context, externalID string) ([]string, error) {
	series, err := c.SeriesDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, season := range series.Seasons {
		if season.SeasonNumber == 0 {
			continue
		}
		episodes, err := c.SeasonEpisodes(ctx, externalID, season.SeasonNumber)
		if err != nil {
			return nil, err
		}
		for _, e := range episodes {
			keys = append(keys, models.EpisodeKey(e.SeasonNumber, e.EpisodeNumber))
		}
	}
	return keys, nil
}

// Trending returns the weekly trending titles across movies and series.
func (c *Client) Trending(ctx context.Context) ([]models.Title, error) {
	var resp listResponse
	if err := c.getJSON(ctx, "/trending/all/week", nil, &resp); err != nil {
		return nil, err
	}
	return c.normalizeList(resp), nil
}

// Search queries the provider across movies and series.
func (c *Client) Search(ctx context.Context, query string) ([]models.Title, error) {
	var resp listResponse
	if err := c.getJSON(ctx, "/search/multi", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	return c.normalizeList(resp), nil
}

func (c *Client) normalizeList(resp listResponse) []models.Title {
	titles := make([]models.Title, 0, len(resp.Results))
	for _, r := range resp.Results {
		var mediaType string
		switch r.MediaType {
		case "movie":
			mediaType = models.MediaTypeMovie
		case "tv":
			mediaType = models.MediaTypeSeries
		default:
			// people and other result types are not catalog entries
			continue
		}
		name := r.Title
		if name == "" {
			name = r.Name
		}
		titles = append(titles, models.Title{
			ExternalID:   strconv.Itoa(r.ID),
			MediaType:    mediaType,
			Title:        name,
			Overview:     r.Overview,
			PosterPath:   r.PosterPath,
			VoteAverage:  r.VoteAverage,
			ReleaseDate:  r.ReleaseDate,
			FirstAirDate: r.FirstAirDate,
		})
	}
	return titles
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("tmdb api key not configured")
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	fullURL := c.baseURL + path + "?" + query.Encode()

	if body, ok := c.cached(fullURL); ok {
		return json.Unmarshal(body, out)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[tmdb] http request error: %v", err)
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[tmdb] unexpected status %d for %s", resp.StatusCode, path)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.cacheMu.Lock()
	c.cache[fullURL] = cacheEntry{body: buf, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	return json.Unmarshal(buf, out)
}

func (c *Client) cached(key string) ([]byte, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || time.Since(entry.fetchedAt) > c.cacheTTL {
		return nil, false
	}
	return entry.body, true
}
