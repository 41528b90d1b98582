package cache

import (
	"context"
	"database/sql"

	dbutil "cadence/internal/db"
)

// ReplacePlaylists replaces the whole playlist mirror: playlists are
// upserted, removed playlists deleted, and memberships rewritten with
// their sync order as position. Runs in a single transaction.
func (c *Cache) ReplacePlaylists(ctx context.Context, playlists []Playlist, membership map[string][]string) error {
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_songs`); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM playlists`); err != nil {
			return err
		}

		plStmt, err := tx.Prepare(`
			INSERT INTO playlists (id, name, description, owner, public, song_count, duration)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer plStmt.Close()

		memberStmt, err := tx.Prepare(`
			INSERT INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer memberStmt.Close()

		for _, p := range playlists {
			if _, err := plStmt.Exec(p.ID, p.Name, p.Description, p.Owner, p.Public, p.SongCount, p.Duration); err != nil {
				return err
			}
			for pos, songID := range membership[p.ID] {
				if _, err := memberStmt.Exec(p.ID, songID, pos); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify("playlists")
	return nil
}

// UpsertPlaylist mirrors a single playlist row.
func (c *Cache) UpsertPlaylist(ctx context.Context, p Playlist) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, owner, public, song_count, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			owner = excluded.owner,
			public = excluded.public,
			song_count = excluded.song_count,
			duration = excluded.duration
	`, p.ID, p.Name, p.Description, p.Owner, p.Public, p.SongCount, p.Duration)
	if err != nil {
		return err
	}
	c.notify("playlists")
	return nil
}

// DeletePlaylist removes a playlist; memberships cascade.
func (c *Cache) DeletePlaylist(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	c.notify("playlists")
	return nil
}

// Playlists returns all cached playlists by name.
func (c *Cache) Playlists(ctx context.Context) ([]Playlist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, description, owner, public, song_count, duration
		FROM playlists
		ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Owner, &p.Public, &p.SongCount, &p.Duration); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// PlaylistSongs returns a playlist's songs in position order, excluding
// songs with dangling references.
func (c *Cache) PlaylistSongs(ctx context.Context, playlistID string) ([]Song, error) {
	return c.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM playlist_songs ps
		INNER JOIN songs s ON s.id = ps.song_id
		INNER JOIN albums al ON al.id = s.album_id
		INNER JOIN artists ar ON ar.id = s.artist_id
		WHERE ps.playlist_id = ?
		ORDER BY ps.position
	`, playlistID)
}

// AddPlaylistSong appends a song at the next free position.
func (c *Cache) AddPlaylistSong(ctx context.Context, playlistID, songID string) error {
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRow(`
			SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_songs WHERE playlist_id = ?
		`, playlistID).Scan(&next)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO playlist_songs (playlist_id, song_id, position) VALUES (?, ?, ?)
			ON CONFLICT(playlist_id, song_id) DO NOTHING
		`, playlistID, songID, next)
		return err
	})
	if err != nil {
		return err
	}
	c.notify("playlists")
	return nil
}

// RemovePlaylistSong removes a membership row. Positions of the
// remaining songs are left untouched; gaps are tolerated.
func (c *Cache) RemovePlaylistSong(ctx context.Context, playlistID, songID string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?
	`, playlistID, songID)
	if err != nil {
		return err
	}
	c.notify("playlists")
	return nil
}

// ReorderPlaylistSongs rewrites positions to match the given order.
// Songs not listed keep their rows but are pushed after the listed ones.
func (c *Cache) ReorderPlaylistSongs(ctx context.Context, playlistID string, songIDs []string) error {
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			UPDATE playlist_songs SET position = ? WHERE playlist_id = ? AND song_id = ?
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for pos, songID := range songIDs {
			if _, err := stmt.Exec(pos, playlistID, songID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify("playlists")
	return nil
}
