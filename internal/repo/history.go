package repo

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"cadence/internal/api"
	"cadence/internal/cache"
)

// HistoryRepo records plays locally and reports them to the server.
// The local write is authoritative for the listening-stats views; the
// remote report is best effort.
type HistoryRepo struct {
	client *api.Client
	cache  *cache.Cache
	log    *logrus.Entry
}

// RecordPlay satisfies the playback engine's Recorder. The cache write
// happens first so stats survive offline listening; a failed server
// report is only logged.
func (r *HistoryRepo) RecordPlay(ctx context.Context, songID string, playedAt time.Time, durationPlayed time.Duration, completed bool) error {
	if err := r.cache.AddPlay(ctx, songID, playedAt, durationPlayed, completed); err != nil {
		return err
	}
	if err := r.client.RecordPlay(ctx, songID, playedAt, durationPlayed, completed); err != nil {
		r.log.WithError(err).WithField("song", songID).Debug("remote play report failed")
	}
	return nil
}

func (r *HistoryRepo) RecentlyPlayed(ctx context.Context, limit int) ([]cache.Song, error) {
	return r.cache.RecentlyPlayed(ctx, limit)
}

func (r *HistoryRepo) MostPlayed(ctx context.Context, limit int) ([]cache.Song, error) {
	return r.cache.MostPlayed(ctx, limit)
}

func (r *HistoryRepo) Entries(ctx context.Context, limit int) ([]cache.PlayEntry, error) {
	return r.cache.PlayHistory(ctx, limit)
}
