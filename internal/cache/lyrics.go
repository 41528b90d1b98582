package cache

import (
	"context"
	"database/sql"

	dbutil "cadence/internal/db"
)

// UpsertLyrics inserts or replaces lyrics by primary key, keeping the
// (song, language, synced) uniqueness by replacing any clashing row.
func (c *Cache) UpsertLyrics(ctx context.Context, lyrics []Lyrics) error {
	if len(lyrics) == 0 {
		return nil
	}
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO lyrics (id, song_id, content, synced, source, language)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, l := range lyrics {
			if _, err := stmt.Exec(l.ID, l.SongID, l.Content, l.Synced, l.Source, l.Language); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify("lyrics")
	return nil
}

// LyricsForSong returns all lyrics rows for a song, synced first.
func (c *Cache) LyricsForSong(ctx context.Context, songID string) ([]Lyrics, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, song_id, content, synced, source, language
		FROM lyrics
		WHERE song_id = ?
		ORDER BY synced DESC, language
	`, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Lyrics
	for rows.Next() {
		var l Lyrics
		if err := rows.Scan(&l.ID, &l.SongID, &l.Content, &l.Synced, &l.Source, &l.Language); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// HasLyrics reports whether any lyrics are cached for a song.
func (c *Cache) HasLyrics(ctx context.Context, songID string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM lyrics WHERE song_id = ? LIMIT 1`, songID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
