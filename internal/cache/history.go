package cache

import (
	"context"
	"database/sql"
	"time"

	dbutil "cadence/internal/db"
)

// AddPlay appends a play-history entry and bumps the song's play count
// and last-played timestamp in one transaction.
func (c *Cache) AddPlay(ctx context.Context, songID string, playedAt time.Time, durationPlayed time.Duration, completed bool) error {
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO play_history (song_id, played_at, duration_played, completed)
			VALUES (?, ?, ?, ?)
		`, songID, playedAt.Unix(), int(durationPlayed.Seconds()), completed)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			UPDATE songs SET play_count = play_count + 1, last_played_at = ? WHERE id = ?
		`, playedAt.Unix(), songID)
		return err
	})
	if err != nil {
		return err
	}
	c.notify("play_history")
	return nil
}

// RecentlyPlayed returns distinct songs by most recent play.
func (c *Cache) RecentlyPlayed(ctx context.Context, limit int) ([]Song, error) {
	return c.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM (
			SELECT song_id, MAX(played_at) AS last_play
			FROM play_history
			GROUP BY song_id
			ORDER BY last_play DESC
			LIMIT ?
		) h
		INNER JOIN songs s ON s.id = h.song_id
		INNER JOIN albums al ON al.id = s.album_id
		INNER JOIN artists ar ON ar.id = s.artist_id
		ORDER BY h.last_play DESC
	`, limit)
}

// MostPlayed returns songs ordered by play count.
func (c *Cache) MostPlayed(ctx context.Context, limit int) ([]Song, error) {
	return c.querySongs(ctx, `
		SELECT `+songColumns+resolvedSongs+`
		WHERE s.play_count > 0
		ORDER BY s.play_count DESC, s.last_played_at DESC
		LIMIT ?
	`, limit)
}

// PlayHistory returns raw history entries, newest first.
func (c *Cache) PlayHistory(ctx context.Context, limit int) ([]PlayEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, song_id, played_at, duration_played, completed
		FROM play_history
		ORDER BY played_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlayEntry
	for rows.Next() {
		var e PlayEntry
		var playedAt int64
		if err := rows.Scan(&e.ID, &e.SongID, &playedAt, &e.DurationPlayed, &e.Completed); err != nil {
			return nil, err
		}
		e.PlayedAt = time.Unix(playedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
