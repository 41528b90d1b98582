package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Artists returns a page of artists.
func (c *Client) Artists(ctx context.Context, limit, offset int, sort string) ([]Artist, error) {
	var result []Artist
	if err := c.do(ctx, http.MethodGet, "artists", pageQuery(limit, offset, sort), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Albums returns a page of albums. Song lists may be embedded.
func (c *Client) Albums(ctx context.Context, limit, offset int, sort string) ([]Album, error) {
	var result []Album
	if err := c.do(ctx, http.MethodGet, "albums", pageQuery(limit, offset, sort), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Songs returns a page of songs.
func (c *Client) Songs(ctx context.Context, limit, offset int, sort string) ([]Song, error) {
	var result []Song
	if err := c.do(ctx, http.MethodGet, "songs", pageQuery(limit, offset, sort), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Playlists returns all playlists visible to the user, songs embedded.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	var result []Playlist
	if err := c.do(ctx, http.MethodGet, "playlists", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreatePlaylist creates a playlist and returns the server's version.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	var result Playlist
	req := playlistRequest{Name: name, Description: description, Public: public}
	if err := c.do(ctx, http.MethodPost, "playlists", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdatePlaylist renames or re-describes a playlist.
func (c *Client) UpdatePlaylist(ctx context.Context, id, name, description string, public bool) error {
	req := playlistRequest{Name: name, Description: description, Public: public}
	return c.do(ctx, http.MethodPut, "playlists/"+url.PathEscape(id), nil, req, nil)
}

// DeletePlaylist removes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "playlists/"+url.PathEscape(id), nil, nil, nil)
}

// AddPlaylistSongs appends songs to a playlist.
func (c *Client) AddPlaylistSongs(ctx context.Context, id string, songIDs []string) error {
	return c.do(ctx, http.MethodPost, "playlists/"+url.PathEscape(id)+"/songs", nil, playlistSongsRequest{SongIDs: songIDs}, nil)
}

// RemovePlaylistSong removes a song from a playlist.
func (c *Client) RemovePlaylistSong(ctx context.Context, id, songID string) error {
	return c.do(ctx, http.MethodDelete, "playlists/"+url.PathEscape(id)+"/songs/"+url.PathEscape(songID), nil, nil, nil)
}

// ReorderPlaylist replaces the playlist's song order wholesale.
func (c *Client) ReorderPlaylist(ctx context.Context, id string, songIDs []string) error {
	return c.do(ctx, http.MethodPut, "playlists/"+url.PathEscape(id)+"/songs", nil, playlistSongsRequest{SongIDs: songIDs}, nil)
}

// LikeSong marks or unmarks a song as liked.
func (c *Client) LikeSong(ctx context.Context, id string, liked bool) error {
	return c.setLike(ctx, "songs", id, liked)
}

// LikeAlbum marks or unmarks an album as liked.
func (c *Client) LikeAlbum(ctx context.Context, id string, liked bool) error {
	return c.setLike(ctx, "albums", id, liked)
}

// FollowArtist follows or unfollows an artist.
func (c *Client) FollowArtist(ctx context.Context, id string, followed bool) error {
	path := "me/library/follow/artists/" + url.PathEscape(id)
	method := http.MethodPost
	if !followed {
		method = http.MethodDelete
	}
	return c.do(ctx, method, path, nil, nil, nil)
}

func (c *Client) setLike(ctx context.Context, kind, id string, liked bool) error {
	path := "me/library/like/" + kind + "/" + url.PathEscape(id)
	method := http.MethodPost
	if !liked {
		method = http.MethodDelete
	}
	return c.do(ctx, method, path, nil, nil, nil)
}

// RecordPlay reports a playback event to the server.
func (c *Client) RecordPlay(ctx context.Context, songID string, playedAt time.Time, durationPlayed time.Duration, completed bool) error {
	rec := playRecord{
		SongID:         songID,
		PlayedAt:       playedAt.UTC(),
		DurationPlayed: int(durationPlayed.Seconds()),
		Completed:      completed,
	}
	return c.do(ctx, http.MethodPost, "me/history/play", nil, rec, nil)
}

// SongLyrics fetches lyrics for a song. Returns ErrNotFound when the
// server has none.
func (c *Client) SongLyrics(ctx context.Context, songID string) ([]Lyrics, error) {
	var result []Lyrics
	if err := c.do(ctx, http.MethodGet, "songs/"+url.PathEscape(songID)+"/lyrics", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
