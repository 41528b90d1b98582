package cache

import (
	"context"
	"database/sql"

	dbutil "cadence/internal/db"
)

// UpsertAlbums inserts or replaces albums by primary key in a single
// transaction. Empty parent references are stored as NULL.
func (c *Cache) UpsertAlbums(ctx context.Context, albums []Album) error {
	if len(albums) == 0 {
		return nil
	}
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO albums (id, name, artist_id, album_artist_id, year, cover_path, song_count, duration, liked)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				artist_id = excluded.artist_id,
				album_artist_id = excluded.album_artist_id,
				year = excluded.year,
				cover_path = excluded.cover_path,
				song_count = excluded.song_count,
				duration = excluded.duration,
				liked = excluded.liked
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range albums {
			_, err := stmt.Exec(
				a.ID, a.Name,
				dbutil.NullString(a.ArtistID), dbutil.NullString(a.AlbumArtistID),
				a.Year, dbutil.NullString(a.CoverPath), a.SongCount, a.Duration, a.Liked,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify("albums")
	return nil
}

// Albums returns cached albums whose artist reference resolves.
// Albums left with a NULL artist by an interrupted sync are excluded.
func (c *Cache) Albums(ctx context.Context) ([]Album, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT al.id, al.name, al.artist_id, al.album_artist_id, al.year,
		       al.cover_path, al.song_count, al.duration, al.liked
		FROM albums al
		INNER JOIN artists ar ON ar.id = al.artist_id
		ORDER BY al.name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// AlbumsByArtist returns an artist's albums ordered by year.
func (c *Cache) AlbumsByArtist(ctx context.Context, artistID string) ([]Album, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT al.id, al.name, al.artist_id, al.album_artist_id, al.year,
		       al.cover_path, al.song_count, al.duration, al.liked
		FROM albums al
		INNER JOIN artists ar ON ar.id = al.artist_id
		WHERE al.artist_id = ? OR al.album_artist_id = ?
		ORDER BY (al.year IS NULL OR al.year = 0), al.year, al.name COLLATE NOCASE
	`, artistID, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// AlbumByID returns a single album, or sql.ErrNoRows.
func (c *Cache) AlbumByID(ctx context.Context, id string) (*Album, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, artist_id, album_artist_id, year, cover_path, song_count, duration, liked
		FROM albums WHERE id = ?
	`, id)
	a, err := scanAlbumRow(row)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// LikedAlbums returns liked albums with a resolving artist reference.
func (c *Cache) LikedAlbums(ctx context.Context) ([]Album, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT al.id, al.name, al.artist_id, al.album_artist_id, al.year,
		       al.cover_path, al.song_count, al.duration, al.liked
		FROM albums al
		INNER JOIN artists ar ON ar.id = al.artist_id
		WHERE al.liked = 1
		ORDER BY al.name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// SetAlbumLiked updates the liked flag.
func (c *Cache) SetAlbumLiked(ctx context.Context, id string, liked bool) error {
	_, err := c.db.ExecContext(ctx, `UPDATE albums SET liked = ? WHERE id = ?`, liked, id)
	if err != nil {
		return err
	}
	c.notify("albums")
	return nil
}

type albumScanner interface {
	Scan(dest ...any) error
}

func scanAlbumRow(row albumScanner) (*Album, error) {
	var a Album
	var artistID, albumArtistID, coverPath sql.NullString
	var year sql.NullInt64
	err := row.Scan(&a.ID, &a.Name, &artistID, &albumArtistID, &year, &coverPath, &a.SongCount, &a.Duration, &a.Liked)
	if err != nil {
		return nil, err
	}
	a.ArtistID = dbutil.NullStringValue(artistID)
	a.AlbumArtistID = dbutil.NullStringValue(albumArtistID)
	a.CoverPath = dbutil.NullStringValue(coverPath)
	a.Year = int(dbutil.NullInt64Value(year))
	return &a, nil
}

func scanAlbums(rows *sql.Rows) ([]Album, error) {
	var albums []Album
	for rows.Next() {
		a, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *a)
	}
	return albums, rows.Err()
}
