package catalog

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinetrack/models"
)

// MetadataProvider is the slice of the provider client the calendar needs.
type MetadataProvider interface {
	SeriesDetails(ctx context.Context, externalID string) (models.Title, error)
	SeasonEpisodes(ctx context.Context, externalID string, season int) ([]models.Episode, error)
}

// Service builds the upcoming-episodes view for a user's saved series. Each
// series requires its own provider round-trips, so the refresh fans out with a
// fixed worker limit; one failing series logs and contributes nothing rather
// than aborting the batch.
type Service struct {
	provider   MetadataProvider
	maxWorkers int
	now        func() time.Time
}

// NewService creates a calendar service over the given provider.
func NewService(provider MetadataProvider, maxWorkers int) *Service {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Service{provider: provider, maxWorkers: maxWorkers, now: time.Now}
}

// UpcomingCalendar resolves the next not-yet-aired episode for every series on
// the active list, sorted by air date.
func (s *Service) UpcomingCalendar(ctx context.Context, records []models.WatchlistRecord) []models.CalendarEntry {
	var (
		mu      sync.Mutex
		entries []models.CalendarEntry
	)

	p := pool.New().WithMaxGoroutines(s.maxWorkers)
	for _, rec := range records {
		if rec.MediaType != models.MediaTypeSeries || !rec.InWatchlist {
			continue
		}
		rec := rec
		p.Go(func() {
			entry, ok, err := s.nextEpisode(ctx, rec)
			if err != nil {
				log.Printf("[catalog] calendar fetch failed for %s: %v", rec.Key(), err)
				return
			}
			if !ok {
				return
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
		})
	}
	p.Wait()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Episode.AirDate < entries[j].Episode.AirDate
	})
	return entries
}

// nextEpisode finds the first episode of the latest season airing today or
// later. Specials (season 0) never appear in the calendar.
func (s *Service) nextEpisode(ctx context.Context, rec models.WatchlistRecord) (models.CalendarEntry, bool, error) {
	series, err := s.provider.SeriesDetails(ctx, rec.ExternalID)
	if err != nil {
		return models.CalendarEntry{}, false, err
	}

	latest := 0
	for _, season := range series.Seasons {
		if season.SeasonNumber > latest {
			latest = season.SeasonNumber
		}
	}
	if latest == 0 {
		return models.CalendarEntry{}, false, nil
	}

	episodes, err := s.provider.SeasonEpisodes(ctx, rec.ExternalID, latest)
	if err != nil {
		return models.CalendarEntry{}, false, err
	}

	today := s.now().UTC().Format("2006-01-02")
	for _, e := range episodes {
		// air dates are occasionally missing from the provider
		if e.AirDate == "" || e.AirDate < today {
			continue
		}
		return models.CalendarEntry{
			ExternalID: rec.ExternalID,
			Title:      series.Title,
			PosterPath: series.PosterPath,
			Episode:    e,
		}, true, nil
	}
	return models.CalendarEntry{}, false, nil
}
