package cache

import (
	"context"
	"database/sql"

	dbutil "cadence/internal/db"
)

const songColumns = `
	s.id, s.title, s.album_id, s.artist_id, s.track_number, s.disc_number,
	s.duration, s.file_path, s.file_size, s.modified_at, s.bitrate, s.format,
	s.liked, s.play_count, s.last_played_at, al.name, ar.name`

// resolvedSongs joins songs to both parents so rows with dangling
// references never reach domain projections.
const resolvedSongs = `
	FROM songs s
	INNER JOIN albums al ON al.id = s.album_id
	INNER JOIN artists ar ON ar.id = s.artist_id`

// UpsertSongs inserts or replaces songs by primary key in a single
// transaction. Empty parent references are stored as NULL.
func (c *Cache) UpsertSongs(ctx context.Context, songs []Song) error {
	if len(songs) == 0 {
		return nil
	}
	err := dbutil.WithTxContext(ctx, c.db, func(tx *sql.Tx) error {
		return upsertSongsTx(tx, songs)
	})
	if err != nil {
		return err
	}
	c.notify("songs")
	return nil
}

func upsertSongsTx(tx *sql.Tx, songs []Song) error {
	stmt, err := tx.Prepare(`
		INSERT INTO songs (id, title, album_id, artist_id, track_number, disc_number,
			duration, file_path, file_size, modified_at, bitrate, format,
			liked, play_count, last_played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			album_id = excluded.album_id,
			artist_id = excluded.artist_id,
			track_number = excluded.track_number,
			disc_number = excluded.disc_number,
			duration = excluded.duration,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			modified_at = excluded.modified_at,
			bitrate = excluded.bitrate,
			format = excluded.format,
			liked = excluded.liked,
			play_count = excluded.play_count,
			last_played_at = excluded.last_played_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range songs {
		_, err := stmt.Exec(
			s.ID, s.Title,
			dbutil.NullString(s.AlbumID), dbutil.NullString(s.ArtistID),
			s.TrackNumber, s.DiscNumber, s.Duration,
			dbutil.NullString(s.FilePath), s.FileSize, unixPtr(s.ModifiedAt),
			s.Bitrate, dbutil.NullString(s.Format),
			s.Liked, s.PlayCount, unixPtr(s.LastPlayedAt),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Songs returns all cached songs whose album and artist references
// resolve, ordered by title.
func (c *Cache) Songs(ctx context.Context) ([]Song, error) {
	return c.querySongs(ctx, `SELECT `+songColumns+resolvedSongs+` ORDER BY s.title COLLATE NOCASE`)
}

// SongByID returns a single song, or sql.ErrNoRows. Unlike list
// projections, a direct lookup does not require resolved parents so the
// play queue can keep referencing a song mid-resync.
func (c *Cache) SongByID(ctx context.Context, id string) (*Song, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs s
		LEFT JOIN albums al ON al.id = s.album_id
		LEFT JOIN artists ar ON ar.id = s.artist_id
		WHERE s.id = ?
	`, id)
	return scanSongRow(row)
}

// SongsByAlbum returns an album's songs in disc/track order.
func (c *Cache) SongsByAlbum(ctx context.Context, albumID string) ([]Song, error) {
	return c.querySongs(ctx, `
		SELECT `+songColumns+resolvedSongs+`
		WHERE s.album_id = ?
		ORDER BY s.disc_number, s.track_number
	`, albumID)
}

// LikedSongs returns liked songs with resolving references.
func (c *Cache) LikedSongs(ctx context.Context) ([]Song, error) {
	return c.querySongs(ctx, `
		SELECT `+songColumns+resolvedSongs+`
		WHERE s.liked = 1
		ORDER BY s.title COLLATE NOCASE
	`)
}

// SearchSongs returns songs whose title matches the query.
func (c *Cache) SearchSongs(ctx context.Context, query string, limit int) ([]Song, error) {
	return c.querySongs(ctx, `
		SELECT `+songColumns+resolvedSongs+`
		WHERE s.title LIKE ? ESCAPE '\'
		ORDER BY s.title COLLATE NOCASE
		LIMIT ?
	`, likePattern(query), limit)
}

// SetSongLiked updates the liked flag.
func (c *Cache) SetSongLiked(ctx context.Context, id string, liked bool) error {
	_, err := c.db.ExecContext(ctx, `UPDATE songs SET liked = ? WHERE id = ?`, liked, id)
	if err != nil {
		return err
	}
	c.notify("songs")
	return nil
}

func (c *Cache) querySongs(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		s, err := scanSongRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *s)
	}
	return songs, rows.Err()
}

type songScanner interface {
	Scan(dest ...any) error
}

func scanSongRow(row songScanner) (*Song, error) {
	var s Song
	var albumID, artistID, filePath, format, albumName, artistName sql.NullString
	var trackNumber, discNumber, modifiedAt, lastPlayedAt sql.NullInt64
	err := row.Scan(
		&s.ID, &s.Title, &albumID, &artistID, &trackNumber, &discNumber,
		&s.Duration, &filePath, &s.FileSize, &modifiedAt, &s.Bitrate, &format,
		&s.Liked, &s.PlayCount, &lastPlayedAt, &albumName, &artistName,
	)
	if err != nil {
		return nil, err
	}
	s.AlbumID = dbutil.NullStringValue(albumID)
	s.ArtistID = dbutil.NullStringValue(artistID)
	s.AlbumName = dbutil.NullStringValue(albumName)
	s.ArtistName = dbutil.NullStringValue(artistName)
	s.FilePath = dbutil.NullStringValue(filePath)
	s.Format = dbutil.NullStringValue(format)
	s.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
	s.DiscNumber = int(dbutil.NullInt64Value(discNumber))
	s.ModifiedAt = timePtr(modifiedAt)
	s.LastPlayedAt = timePtr(lastPlayedAt)
	return &s, nil
}
