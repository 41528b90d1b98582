package playback

import (
	"time"

	"cadence/internal/cache"
	"cadence/internal/player"
)

// SetQueue replaces the queue with the given songs and starts playback
// at startIndex. An empty list clears the queue and stops playback.
func (e *Engine) SetQueue(songs []cache.Song, startIndex int) {
	e.mu.Lock()
	e.recordStopLocked(false)
	if e.queue.Replace(songs, startIndex) == nil {
		e.stopTransportLocked()
	} else {
		e.playCurrentLocked()
	}
	e.broadcastLocked()
	e.mu.Unlock()
}

// AddToQueue appends songs without disturbing playback.
func (e *Engine) AddToQueue(songs ...cache.Song) {
	e.mu.Lock()
	e.queue.Add(songs...)
	e.broadcastLocked()
	e.mu.Unlock()
}

// PlayNext queues songs and starts them immediately.
func (e *Engine) PlayNext(songs ...cache.Song) {
	e.mu.Lock()
	e.recordStopLocked(false)
	if e.queue.AddAndPlay(songs...) != nil {
		e.playCurrentLocked()
	}
	e.broadcastLocked()
	e.mu.Unlock()
}

// RemoveFromQueue removes the song at the given index. Removing the
// playing song switches playback to its successor; removing the last
// playing song stops the transport.
func (e *Engine) RemoveFromQueue(index int) {
	e.mu.Lock()
	wasCurrent := index == e.queue.CurrentIndex()
	if !e.queue.RemoveAt(index) {
		e.mu.Unlock()
		return
	}
	if wasCurrent {
		e.recordStopLocked(false)
		if e.queue.Current() != nil {
			e.playCurrentLocked()
		} else {
			e.stopTransportLocked()
		}
	}
	e.broadcastLocked()
	e.mu.Unlock()
}

// ClearQueue empties the queue and stops playback.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	e.recordStopLocked(false)
	e.queue.Clear()
	e.stopTransportLocked()
	e.broadcastLocked()
	e.mu.Unlock()
}

// Play resumes paused playback, or starts the queue's current song
// when nothing is loaded.
func (e *Engine) Play() {
	e.mu.Lock()
	switch e.transport.State() {
	case player.Paused:
		e.transport.Resume()
	case player.Stopped:
		if e.queue.Current() != nil {
			e.playCurrentLocked()
		}
	case player.Playing:
		// Already playing
	}
	e.broadcastLocked()
	e.mu.Unlock()
}

// Pause pauses playback. No-op when nothing is playing.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.transport.Pause()
	e.broadcastLocked()
	e.mu.Unlock()
}

// Toggle flips between playing and paused.
func (e *Engine) Toggle() {
	e.mu.Lock()
	if e.transport.State() == player.Stopped && e.queue.Current() != nil {
		e.playCurrentLocked()
	} else {
		e.transport.Toggle()
	}
	e.broadcastLocked()
	e.mu.Unlock()
}

// Stop halts playback. The queue and cursor are untouched.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.recordStopLocked(false)
	e.stopTransportLocked()
	e.broadcastLocked()
	e.mu.Unlock()
}

// Next skips to the following song. At the end of the queue this is a
// no-op unless repeat-all wraps to the start.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.shuffle && e.queue.Len() > 1:
		e.queue.JumpTo(e.randomIndexLocked())
	case e.queue.HasNext():
		e.queue.Next()
	case e.repeatMode == RepeatAll && e.queue.Len() > 0:
		e.queue.JumpTo(0)
	default:
		return
	}
	e.recordStopLocked(false)
	e.playCurrentLocked()
	e.broadcastLocked()
}

// Previous restarts the current song when it has played for a few
// seconds, otherwise steps back. At the start of the queue this is a
// no-op unless repeat-all wraps to the end.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transport.Position() > restartThreshold {
		e.transport.SeekTo(0)
		e.broadcastLocked()
		return
	}

	switch {
	case e.queue.HasPrevious():
		e.queue.Previous()
	case e.repeatMode == RepeatAll && e.queue.Len() > 0:
		e.queue.JumpTo(e.queue.Len() - 1)
	default:
		return
	}
	e.recordStopLocked(false)
	e.playCurrentLocked()
	e.broadcastLocked()
}

// SeekToIndex jumps to an arbitrary queue position and plays it.
// Invalid indices are ignored.
func (e *Engine) SeekToIndex(index int) {
	e.mu.Lock()
	if e.queue.JumpTo(index) != nil {
		e.recordStopLocked(false)
		e.playCurrentLocked()
		e.broadcastLocked()
	}
	e.mu.Unlock()
}

// SeekTo moves the playback position within the current song.
func (e *Engine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	e.transport.SeekTo(pos)
	e.broadcastLocked()
	e.mu.Unlock()
}

// Seek moves the playback position by a delta.
func (e *Engine) Seek(delta time.Duration) {
	e.mu.Lock()
	e.transport.Seek(delta)
	e.broadcastLocked()
	e.mu.Unlock()
}

// SetRepeatMode changes the repeat behavior. Takes effect on the next
// track boundary; the transport never knows about modes.
func (e *Engine) SetRepeatMode(mode RepeatMode) {
	e.mu.Lock()
	e.repeatMode = mode
	e.broadcastLocked()
	e.mu.Unlock()
}

// CycleRepeatMode steps Off -> All -> One -> Off and returns the new
// mode.
func (e *Engine) CycleRepeatMode() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.repeatMode {
	case RepeatOff:
		e.repeatMode = RepeatAll
	case RepeatAll:
		e.repeatMode = RepeatOne
	default:
		e.repeatMode = RepeatOff
	}
	e.broadcastLocked()
	return e.repeatMode
}

// SetShuffleMode toggles random track selection.
func (e *Engine) SetShuffleMode(enabled bool) {
	e.mu.Lock()
	e.shuffle = enabled
	e.broadcastLocked()
	e.mu.Unlock()
}

// SetVolume sets the output level, 0.0 through 1.0.
func (e *Engine) SetVolume(level float64) {
	e.mu.Lock()
	e.transport.SetVolume(level)
	e.broadcastLocked()
	e.mu.Unlock()
}

// SetMuted silences or restores output. The volume level is kept.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	e.transport.SetMuted(muted)
	e.broadcastLocked()
	e.mu.Unlock()
}

// SetPlaybackSpeed changes the playback rate for the current and all
// following songs.
func (e *Engine) SetPlaybackSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.transport.SetSpeed(speed)
	e.speed = e.transport.Speed()
	e.broadcastLocked()
	e.mu.Unlock()
}

// RestoreQueue reloads a previously saved queue without starting
// playback. Used at startup.
func (e *Engine) RestoreQueue(songs []cache.Song, index int, mode RepeatMode, shuffle bool, speed float64) {
	e.mu.Lock()
	e.queue.Replace(songs, index)
	e.repeatMode = mode
	e.shuffle = shuffle
	if speed > 0 {
		e.speed = speed
		e.transport.SetSpeed(speed)
		e.speed = e.transport.Speed()
	}
	e.broadcastLocked()
	e.mu.Unlock()
}
