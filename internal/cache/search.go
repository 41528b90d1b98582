package cache

import (
	"context"
	"strings"
)

// likePattern builds a contains-match LIKE pattern with metacharacters
// escaped.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}

// SearchAlbums returns albums whose name matches the query.
func (c *Cache) SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT al.id, al.name, al.artist_id, al.album_artist_id, al.year,
		       al.cover_path, al.song_count, al.duration, al.liked
		FROM albums al
		INNER JOIN artists ar ON ar.id = al.artist_id
		WHERE al.name LIKE ? ESCAPE '\'
		ORDER BY al.name COLLATE NOCASE
		LIMIT ?
	`, likePattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// SearchArtists returns artists whose name matches the query.
func (c *Cache) SearchArtists(ctx context.Context, query string, limit int) ([]Artist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, sort_name, album_count, song_count, followed
		FROM artists
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY name COLLATE NOCASE
		LIMIT ?
	`, likePattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArtists(rows)
}
