package cache

import (
	"context"
	"database/sql"

	dbutil "cadence/internal/db"
)

// UpsertArtists inserts or replaces artists by primary key in a single
// transaction.
func (c *Cache) UpsertArtists(ctx context.Context, artists []Artist) error {
	if len(artists) == 0 {
		return nil
	}
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO artists (id, name, sort_name, album_count, song_count, followed)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				sort_name = excluded.sort_name,
				album_count = excluded.album_count,
				song_count = excluded.song_count,
				followed = excluded.followed
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range artists {
			if _, err := stmt.Exec(a.ID, a.Name, a.SortName, a.AlbumCount, a.SongCount, a.Followed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify("artists")
	return nil
}

// Artists returns all cached artists ordered by sort name.
func (c *Cache) Artists(ctx context.Context) ([]Artist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, sort_name, album_count, song_count, followed
		FROM artists
		ORDER BY CASE WHEN sort_name != '' THEN sort_name ELSE name END COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArtists(rows)
}

// ArtistByID returns a single artist, or sql.ErrNoRows.
func (c *Cache) ArtistByID(ctx context.Context, id string) (*Artist, error) {
	var a Artist
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, sort_name, album_count, song_count, followed
		FROM artists WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &a.SortName, &a.AlbumCount, &a.SongCount, &a.Followed)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FollowedArtists returns artists the user follows.
func (c *Cache) FollowedArtists(ctx context.Context) ([]Artist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, sort_name, album_count, song_count, followed
		FROM artists WHERE followed = 1
		ORDER BY CASE WHEN sort_name != '' THEN sort_name ELSE name END COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArtists(rows)
}

// SetArtistFollowed updates the followed flag.
func (c *Cache) SetArtistFollowed(ctx context.Context, id string, followed bool) error {
	_, err := c.db.ExecContext(ctx, `UPDATE artists SET followed = ? WHERE id = ?`, followed, id)
	if err != nil {
		return err
	}
	c.notify("artists")
	return nil
}

func scanArtists(rows *sql.Rows) ([]Artist, error) {
	var artists []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.SortName, &a.AlbumCount, &a.SongCount, &a.Followed); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}
