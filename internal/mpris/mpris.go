//go:build linux

// Package mpris publishes playback state and controls over D-Bus so
// desktop shells and media keys can drive the client.
package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"cadence/internal/host"
	"cadence/internal/playback"
)

// CoverSource resolves an album id to its artwork URL.
type CoverSource interface {
	CoverURL(albumID string) string
}

// Adapter connects the playback host to MPRIS over D-Bus.
type Adapter struct {
	host   *host.Host
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(h *host.Host, covers CoverSource) (*Adapter, error) {
	a := &Adapter{host: h}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{host: h, covers: covers}

	a.server = server.NewServer("cadence", rootAdapter, playerAdapter)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // The client manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Cadence", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https", "http"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the
// optional loop/shuffle interfaces.
type playerAdapter struct {
	host   *host.Host
	covers CoverSource
}

func (p *playerAdapter) state() playback.State {
	st, _ := p.host.State()
	return st
}

func (p *playerAdapter) Next() error {
	p.host.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.host.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.host.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.host.Toggle()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.host.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.host.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.host.Seek(time.Duration(offset) * time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.host.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	st := p.state()
	switch {
	case st.IsPlaying:
		return types.PlaybackStatusPlaying, nil
	case st.IsActive():
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	st := p.state()
	if st.Speed == 0 {
		return 1.0, nil
	}
	return st.Speed, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.host.SetPlaybackSpeed(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.state()
	song := st.CurrentSong
	if song == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(song.ID)),
		Length:      types.Microseconds(time.Duration(song.Duration) * time.Second / time.Microsecond),
		Title:       song.Title,
		Artist:      []string{song.ArtistName},
		Album:       song.AlbumName,
		TrackNumber: song.TrackNumber,
	}

	if p.covers != nil && song.AlbumID != "" {
		meta.ArtUrl = p.covers.CoverURL(song.AlbumID)
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	st := p.state()
	if st.Muted {
		return 0, nil
	}
	return st.Volume, nil
}

func (p *playerAdapter) SetVolume(level float64) error {
	p.host.SetVolume(level)
	if level > 0 {
		p.host.SetMuted(false)
	}
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.state().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.25, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 4.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	st := p.state()
	return st.CurrentIndex < len(st.Queue)-1 || st.RepeatMode == playback.RepeatAll, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	st := p.state()
	return st.CurrentIndex > 0 || st.RepeatMode == playback.RepeatAll, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return len(p.state().Queue) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.state().RepeatMode {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.host.SetRepeatMode(playback.RepeatOff)
	case types.LoopStatusTrack:
		p.host.SetRepeatMode(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.host.SetRepeatMode(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.state().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.host.SetShuffleMode(shuffle)
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
