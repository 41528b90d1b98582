package repo

import (
	"context"

	"cadence/internal/api"
	"cadence/internal/cache"
)

// ArtistRepo reads artists from the cache and pushes follow changes to
// the server first; a rejected mutation leaves the cache untouched.
type ArtistRepo struct {
	client *api.Client
	cache  *cache.Cache
}

func (r *ArtistRepo) All(ctx context.Context) ([]cache.Artist, error) {
	return r.cache.Artists(ctx)
}

func (r *ArtistRepo) ByID(ctx context.Context, id string) (*cache.Artist, error) {
	return r.cache.ArtistByID(ctx, id)
}

func (r *ArtistRepo) Followed(ctx context.Context) ([]cache.Artist, error) {
	return r.cache.FollowedArtists(ctx)
}

func (r *ArtistRepo) Search(ctx context.Context, q string, limit int) ([]cache.Artist, error) {
	return r.cache.SearchArtists(ctx, q, limit)
}

func (r *ArtistRepo) SetFollowed(ctx context.Context, id string, followed bool) error {
	if err := r.client.FollowArtist(ctx, id, followed); err != nil {
		return err
	}
	return r.cache.SetArtistFollowed(ctx, id, followed)
}

// AlbumRepo reads albums from the cache.
type AlbumRepo struct {
	client *api.Client
	cache  *cache.Cache
}

func (r *AlbumRepo) All(ctx context.Context) ([]cache.Album, error) {
	return r.cache.Albums(ctx)
}

func (r *AlbumRepo) ByID(ctx context.Context, id string) (*cache.Album, error) {
	return r.cache.AlbumByID(ctx, id)
}

func (r *AlbumRepo) ByArtist(ctx context.Context, artistID string) ([]cache.Album, error) {
	return r.cache.AlbumsByArtist(ctx, artistID)
}

func (r *AlbumRepo) Liked(ctx context.Context) ([]cache.Album, error) {
	return r.cache.LikedAlbums(ctx)
}

func (r *AlbumRepo) Search(ctx context.Context, q string, limit int) ([]cache.Album, error) {
	return r.cache.SearchAlbums(ctx, q, limit)
}

func (r *AlbumRepo) SetLiked(ctx context.Context, id string, liked bool) error {
	if err := r.client.LikeAlbum(ctx, id, liked); err != nil {
		return err
	}
	return r.cache.SetAlbumLiked(ctx, id, liked)
}

// CoverURL returns the album art URL on the server.
func (r *AlbumRepo) CoverURL(id string) string {
	return r.client.CoverURL(id)
}

// SongRepo reads songs from the cache.
type SongRepo struct {
	client *api.Client
	cache  *cache.Cache
}

func (r *SongRepo) All(ctx context.Context) ([]cache.Song, error) {
	return r.cache.Songs(ctx)
}

func (r *SongRepo) ByID(ctx context.Context, id string) (*cache.Song, error) {
	return r.cache.SongByID(ctx, id)
}

func (r *SongRepo) ByAlbum(ctx context.Context, albumID string) ([]cache.Song, error) {
	return r.cache.SongsByAlbum(ctx, albumID)
}

func (r *SongRepo) Liked(ctx context.Context) ([]cache.Song, error) {
	return r.cache.LikedSongs(ctx)
}

func (r *SongRepo) Search(ctx context.Context, q string, limit int) ([]cache.Song, error) {
	return r.cache.SearchSongs(ctx, q, limit)
}

func (r *SongRepo) SetLiked(ctx context.Context, id string, liked bool) error {
	if err := r.client.LikeSong(ctx, id, liked); err != nil {
		return err
	}
	return r.cache.SetSongLiked(ctx, id, liked)
}

// StreamURL returns the authenticated stream URL for a song.
func (r *SongRepo) StreamURL(id string) string {
	return r.client.StreamURL(id)
}
