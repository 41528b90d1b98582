package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cadence/internal/api"
	"cadence/internal/cache"
	"cadence/internal/lrclib"
	"cadence/internal/lyrics"
)

// LyricsRepo resolves lyrics for a song through a fallback chain:
// local cache, then the server, then lrclib.net. Results from either
// remote source are written back to the cache.
type LyricsRepo struct {
	client *api.Client
	cache  *cache.Cache
	lrclib *lrclib.Client
	log    *logrus.Entry
}

// ErrNoLyrics is returned when every source comes up empty.
var ErrNoLyrics = errors.New("no lyrics available")

// ForSong returns parsed lyrics for the song, preferring synced over
// plain.
func (r *LyricsRepo) ForSong(ctx context.Context, song cache.Song) (*lyrics.Lyrics, error) {
	cached, err := r.cache.LyricsForSong(ctx, song.ID)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		return parseRow(cached[0])
	}

	if row, ok := r.fromServer(ctx, song.ID); ok {
		return parseRow(row)
	}
	if row, ok := r.fromLrclib(ctx, song); ok {
		return parseRow(row)
	}
	return nil, ErrNoLyrics
}

func parseRow(row cache.Lyrics) (*lyrics.Lyrics, error) {
	if row.Synced {
		return lyrics.ParseString(row.Content)
	}
	return lyrics.ParsePlain(row.Content), nil
}

// fromServer asks the streaming server for lyrics and caches a hit.
func (r *LyricsRepo) fromServer(ctx context.Context, songID string) (cache.Lyrics, bool) {
	remote, err := r.client.SongLyrics(ctx, songID)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			r.log.WithError(err).WithField("song", songID).Debug("server lyrics fetch failed")
		}
		return cache.Lyrics{}, false
	}
	if len(remote) == 0 {
		return cache.Lyrics{}, false
	}

	rows := make([]cache.Lyrics, len(remote))
	for i, l := range remote {
		rows[i] = cache.Lyrics{
			ID:       l.ID,
			SongID:   l.SongID,
			Content:  l.Content,
			Synced:   l.Synced,
			Source:   l.Source,
			Language: l.Language,
		}
	}
	if err := r.cache.UpsertLyrics(ctx, rows); err != nil {
		r.log.WithError(err).Debug("lyrics cache write failed")
	}

	// Prefer a synced variant when the server has both.
	best := rows[0]
	for _, row := range rows {
		if row.Synced {
			best = row
			break
		}
	}
	return best, true
}

// fromLrclib falls back to the public lrclib database, matching on
// artist name, title, and duration.
func (r *LyricsRepo) fromLrclib(ctx context.Context, song cache.Song) (cache.Lyrics, bool) {
	artist, err := r.cache.ArtistByID(ctx, song.ArtistID)
	if err != nil || artist == nil {
		return cache.Lyrics{}, false
	}

	result, err := r.lrclib.Get(ctx, artist.Name, song.Title, time.Duration(song.Duration)*time.Second)
	if err != nil {
		if !errors.Is(err, lrclib.ErrNotFound) {
			r.log.WithError(err).WithField("song", song.ID).Debug("lrclib fetch failed")
		}
		return cache.Lyrics{}, false
	}

	row := cache.Lyrics{
		ID:     uuid.NewString(),
		SongID: song.ID,
	}
	switch {
	case result.HasSyncedLyrics():
		row.Content = result.SyncedLyrics
		row.Synced = true
		row.Source = "external-lrc"
	case result.HasPlainLyrics():
		row.Content = result.PlainLyrics
		row.Source = "external-txt"
	default:
		return cache.Lyrics{}, false
	}

	if err := r.cache.UpsertLyrics(ctx, []cache.Lyrics{row}); err != nil {
		r.log.WithError(err).Debug("lyrics cache write failed")
	}
	return row, true
}
