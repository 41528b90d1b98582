package repo

import (
	"context"

	"cadence/internal/api"
	"cadence/internal/cache"
)

// PlaylistRepo edits playlists on the server first, then mirrors the
// accepted change into the cache.
type PlaylistRepo struct {
	client *api.Client
	cache  *cache.Cache
}

func (r *PlaylistRepo) All(ctx context.Context) ([]cache.Playlist, error) {
	return r.cache.Playlists(ctx)
}

func (r *PlaylistRepo) Songs(ctx context.Context, playlistID string) ([]cache.Song, error) {
	return r.cache.PlaylistSongs(ctx, playlistID)
}

func (r *PlaylistRepo) Create(ctx context.Context, name, description string, public bool) (*cache.Playlist, error) {
	remote, err := r.client.CreatePlaylist(ctx, name, description, public)
	if err != nil {
		return nil, err
	}
	p := cache.Playlist{
		ID:          remote.ID,
		Name:        remote.Name,
		Description: remote.Description,
		Owner:       remote.Owner,
		Public:      remote.Public,
	}
	if err := r.cache.UpsertPlaylist(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlaylistRepo) Update(ctx context.Context, id, name, description string, public bool) error {
	if err := r.client.UpdatePlaylist(ctx, id, name, description, public); err != nil {
		return err
	}
	p, err := r.cache.Playlists(ctx)
	if err != nil {
		return err
	}
	for _, existing := range p {
		if existing.ID == id {
			existing.Name = name
			existing.Description = description
			existing.Public = public
			return r.cache.UpsertPlaylist(ctx, existing)
		}
	}
	return nil
}

func (r *PlaylistRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	return r.cache.DeletePlaylist(ctx, id)
}

func (r *PlaylistRepo) AddSongs(ctx context.Context, id string, songIDs []string) error {
	if err := r.client.AddPlaylistSongs(ctx, id, songIDs); err != nil {
		return err
	}
	for _, songID := range songIDs {
		if err := r.cache.AddPlaylistSong(ctx, id, songID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlaylistRepo) RemoveSong(ctx context.Context, id, songID string) error {
	if err := r.client.RemovePlaylistSong(ctx, id, songID); err != nil {
		return err
	}
	return r.cache.RemovePlaylistSong(ctx, id, songID)
}

func (r *PlaylistRepo) Reorder(ctx context.Context, id string, songIDs []string) error {
	if err := r.client.ReorderPlaylist(ctx, id, songIDs); err != nil {
		return err
	}
	return r.cache.ReorderPlaylistSongs(ctx, id, songIDs)
}
