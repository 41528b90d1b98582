// Package repo exposes the synced library to callers, combining cache
// reads with remote mutations.
package repo

import (
	"github.com/sirupsen/logrus"

	"cadence/internal/api"
	"cadence/internal/cache"
	"cadence/internal/lrclib"
)

// Repos bundles the per-entity repositories over one client and cache.
type Repos struct {
	Artists   *ArtistRepo
	Albums    *AlbumRepo
	Songs     *SongRepo
	Playlists *PlaylistRepo
	Lyrics    *LyricsRepo
	History   *HistoryRepo
}

func New(client *api.Client, c *cache.Cache, log *logrus.Entry) *Repos {
	return &Repos{
		Artists:   &ArtistRepo{client: client, cache: c},
		Albums:    &AlbumRepo{client: client, cache: c},
		Songs:     &SongRepo{client: client, cache: c},
		Playlists: &PlaylistRepo{client: client, cache: c},
		Lyrics:    &LyricsRepo{client: client, cache: c, lrclib: lrclib.New(), log: log},
		History:   &HistoryRepo{client: client, cache: c, log: log},
	}
}

// Watch returns a channel that receives the name of each cache table
// as it changes, for observers that re-read on change.
func (r *Repos) Watch() <-chan string {
	return r.Songs.cache.Watch()
}
