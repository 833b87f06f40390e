package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cinetrack/models"
)

// ErrNotFound is returned when an operation requires a row that does not exist.
var ErrNotFound = errors.New("record not found")

// WatchlistRepository provides access to watchlist rows. One row exists per
// (user_id, external_id, media_type) tuple; Put is a full-row upsert keyed on it.
type WatchlistRepository struct {
	conn *sql.DB
}

// NewWatchlistRepository creates a repository bound to the given connection.
func NewWatchlistRepository(conn *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{conn: conn}
}

const watchlistColumns = `user_id, external_id, media_type, title, poster_path, vote_average,
	in_watchlist, is_watched, in_progress, watched_episodes, created_at, updated_at`

// ListByUser returns all rows for the owner ordered by updated_at descending.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WatchlistRecord, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_items WHERE user_id = ? ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var records []models.WatchlistRecord
	for rows.Next() {
		rec, err := scanWatchlistRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the row for the tuple. The second return value reports presence;
// a missing row is not an error.
func (r *WatchlistRepository) Get(ctx context.Context, userID, externalID, mediaType string) (models.WatchlistRecord, bool, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+watchlistColumns+` FROM watchlist_items WHERE user_id = ? AND external_id = ? AND media_type = ?`,
		userID, externalID, mediaType)

	rec, err := scanWatchlistRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistRecord{}, false, nil
	}
	if err != nil {
		return models.WatchlistRecord{}, false, err
	}
	return rec, true, nil
}

// Put writes the full row, inserting or replacing on the uniqueness tuple.
func (r *WatchlistRepository) Put(ctx context.Context, rec models.WatchlistRecord) error {
	episodes, err := json.Marshal(rec.WatchedEpisodes)
	if err != nil {
		return fmt.Errorf("encode watched episodes: %w", err)
	}

	_, err = r.conn.ExecContext(ctx, `
		INSERT INTO watchlist_items (`+watchlistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, external_id, media_type) DO UPDATE SET
			title = excluded.title,
			poster_path = excluded.poster_path,
			vote_average = excluded.vote_average,
			in_watchlist = excluded.in_watchlist,
			is_watched = excluded.is_watched,
			in_progress = excluded.in_progress,
			watched_episodes = excluded.watched_episodes,
			updated_at = excluded.updated_at`,
		rec.UserID, rec.ExternalID, rec.MediaType, rec.Title, rec.PosterPath, rec.VoteAverage,
		rec.InWatchlist, rec.IsWatched, rec.InProgress, string(episodes), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert watchlist row: %w", err)
	}
	return nil
}

// Delete removes the row outright. Returns ErrNotFound when no row matched.
func (r *WatchlistRepository) Delete(ctx context.Context, userID, externalID, mediaType string) error {
	res, err := r.conn.ExecContext(ctx,
		`DELETE FROM watchlist_items WHERE user_id = ? AND external_id = ? AND media_type = ?`,
		userID, externalID, mediaType)
	if err != nil {
		return fmt.Errorf("delete watchlist row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watchlist row: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWatchlistRecord(row rowScanner) (models.WatchlistRecord, error) {
	var rec models.WatchlistRecord
	var episodes string
	err := row.Scan(&rec.UserID, &rec.ExternalID, &rec.MediaType, &rec.Title, &rec.PosterPath,
		&rec.VoteAverage, &rec.InWatchlist, &rec.IsWatched, &rec.InProgress, &episodes,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return models.WatchlistRecord{}, err
	}
	if err := json.Unmarshal([]byte(episodes), &rec.WatchedEpisodes); err != nil {
		return models.WatchlistRecord{}, fmt.Errorf("decode watched episodes: %w", err)
	}
	if rec.WatchedEpisodes == nil {
		rec.WatchedEpisodes = []string{}
	}
	return rec, nil
}
