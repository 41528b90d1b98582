// Package catalog mirrors the server library into the local cache.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"cadence/internal/api"
	"cadence/internal/cache"
)

const defaultPageSize = 1000

// Report summarizes one completed sync run.
type Report struct {
	Artists   int
	Albums    int
	Songs     int
	Playlists int
	Elapsed   time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("%s artists, %s albums, %s songs, %s playlists in %s",
		humanize.Comma(int64(r.Artists)),
		humanize.Comma(int64(r.Albums)),
		humanize.Comma(int64(r.Songs)),
		humanize.Comma(int64(r.Playlists)),
		r.Elapsed.Round(time.Millisecond))
}

// Engine pulls the remote library into the cache. Stages run in
// dependency order so parent rows always exist before their children:
// artists, then albums, then songs, then playlists.
type Engine struct {
	client   *api.Client
	cache    *cache.Cache
	log      *logrus.Entry
	pageSize int

	running atomic.Bool
	lastRun atomic.Int64 // unix seconds, 0 until the first success
}

func New(client *api.Client, c *cache.Cache, log *logrus.Entry) *Engine {
	return &Engine{
		client:   client,
		cache:    c,
		log:      log,
		pageSize: defaultPageSize,
	}
}

// Running reports whether a sync is currently in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// LastSync returns the completion time of the most recent successful
// run, or the zero time if none has completed.
func (e *Engine) LastSync() time.Time {
	sec := e.lastRun.Load()
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// Sync runs a full library sync. If a sync is already in flight the
// call returns immediately without doing anything. A stage failure
// aborts the remaining stages but keeps everything already written.
func (e *Engine) Sync(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		e.log.Debug("sync already running, skipping")
		return nil
	}
	defer e.running.Store(false)

	start := time.Now()
	var rep Report
	var err error

	if rep.Artists, err = e.syncArtists(ctx); err != nil {
		return fmt.Errorf("sync artists: %w", err)
	}
	if rep.Albums, err = e.syncAlbums(ctx); err != nil {
		return fmt.Errorf("sync albums: %w", err)
	}
	if rep.Songs, err = e.syncSongs(ctx); err != nil {
		return fmt.Errorf("sync songs: %w", err)
	}
	if rep.Playlists, err = e.syncPlaylists(ctx); err != nil {
		return fmt.Errorf("sync playlists: %w", err)
	}

	rep.Elapsed = time.Since(start)
	e.lastRun.Store(time.Now().Unix())
	e.log.Info("sync complete: " + rep.String())
	return nil
}

func (e *Engine) syncArtists(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += e.pageSize {
		page, err := e.client.Artists(ctx, e.pageSize, offset, "name")
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		artists := make([]cache.Artist, len(page))
		for i, a := range page {
			artists[i] = cache.Artist{
				ID:         a.ID,
				Name:       a.Name,
				SortName:   a.SortName,
				AlbumCount: a.AlbumCount,
				SongCount:  a.SongCount,
				Followed:   a.Followed,
			}
		}
		if err := e.cache.UpsertArtists(ctx, artists); err != nil {
			return total, err
		}
		total += len(page)
		if len(page) < e.pageSize {
			break
		}
	}
	return total, nil
}

func (e *Engine) syncAlbums(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += e.pageSize {
		page, err := e.client.Albums(ctx, e.pageSize, offset, "name")
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		albums := make([]cache.Album, len(page))
		for i, a := range page {
			albums[i] = cache.Album{
				ID:            a.ID,
				Name:          a.Name,
				ArtistID:      a.ArtistID,
				AlbumArtistID: a.AlbumArtistID,
				Year:          a.Year,
				CoverPath:     a.CoverPath,
				SongCount:     a.SongCount,
				Duration:      a.Duration,
				Liked:         a.Liked,
			}
		}
		if err := e.cache.UpsertAlbums(ctx, albums); err != nil {
			return total, err
		}
		total += len(page)
		if len(page) < e.pageSize {
			break
		}
	}
	return total, nil
}

func (e *Engine) syncSongs(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += e.pageSize {
		page, err := e.client.Songs(ctx, e.pageSize, offset, "title")
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		if err := e.cache.UpsertSongs(ctx, toCacheSongs(page)); err != nil {
			return total, err
		}
		total += len(page)
		if len(page) < e.pageSize {
			break
		}
	}
	return total, nil
}

// syncPlaylists replaces the playlist mirror wholesale. Songs embedded
// in playlist responses are upserted first so membership rows never
// reference unknown songs.
func (e *Engine) syncPlaylists(ctx context.Context) (int, error) {
	remote, err := e.client.Playlists(ctx)
	if err != nil {
		return 0, err
	}

	playlists := make([]cache.Playlist, len(remote))
	membership := make(map[string][]string, len(remote))
	var embedded []api.Song
	for i, p := range remote {
		playlists[i] = cache.Playlist{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Owner:       p.Owner,
			Public:      p.Public,
			SongCount:   p.SongCount,
			Duration:    p.Duration,
		}
		ids := make([]string, len(p.Songs))
		for j, s := range p.Songs {
			ids[j] = s.ID
			embedded = append(embedded, s)
		}
		membership[p.ID] = ids
	}

	if len(embedded) > 0 {
		if err := e.cache.UpsertSongs(ctx, toCacheSongs(embedded)); err != nil {
			return 0, err
		}
	}
	if err := e.cache.ReplacePlaylists(ctx, playlists, membership); err != nil {
		return 0, err
	}
	return len(remote), nil
}

func toCacheSongs(wire []api.Song) []cache.Song {
	songs := make([]cache.Song, len(wire))
	for i, s := range wire {
		songs[i] = cache.Song{
			ID:           s.ID,
			Title:        s.Title,
			AlbumID:      s.AlbumID,
			ArtistID:     s.ArtistID,
			TrackNumber:  s.TrackNumber,
			DiscNumber:   s.DiscNumber,
			Duration:     s.Duration,
			FilePath:     s.FilePath,
			FileSize:     s.FileSize,
			ModifiedAt:   s.ModifiedTime,
			Bitrate:      s.Bitrate,
			Format:       s.Format,
			Liked:        s.Liked,
			PlayCount:    s.PlayCount,
			LastPlayedAt: s.LastPlayedAt,
		}
	}
	return songs
}
