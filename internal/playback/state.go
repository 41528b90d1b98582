// internal/playback/state.go
package playback

import (
	"time"

	"cadence/internal/cache"
)

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Unknown"
	}
}

// State is an immutable snapshot of the whole playback engine, emitted
// to subscribers on every change. Consumers never mutate it.
type State struct {
	IsPlaying    bool
	IsLoading    bool
	CurrentSong  *cache.Song
	CurrentIndex int
	Queue        []cache.Song
	Position     time.Duration
	Duration     time.Duration
	Speed        float64
	Volume       float64
	Muted        bool
	RepeatMode   RepeatMode
	Shuffle      bool
	Err          error
}

// IsActive returns true if a song is loaded (playing or paused).
func (s State) IsActive() bool {
	return s.CurrentSong != nil
}
