// Package queue holds the ordered play queue and its cursor.
package queue

import "cadence/internal/cache"

// Queue is an ordered list of songs with a playback cursor. It is not
// safe for concurrent use; the playback engine serializes access.
type Queue struct {
	songs        []cache.Song
	currentIndex int // -1 if nothing playing
}

// New creates a new empty queue.
func New() *Queue {
	return &Queue{currentIndex: -1}
}

// Current returns the song at the cursor, or nil if none.
func (q *Queue) Current() *cache.Song {
	if q.currentIndex < 0 || q.currentIndex >= len(q.songs) {
		return nil
	}
	return &q.songs[q.currentIndex]
}

// CurrentIndex returns the cursor position (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Next advances the cursor and returns the new current song.
// Returns nil if there is no next song.
func (q *Queue) Next() *cache.Song {
	if !q.HasNext() {
		return nil
	}
	q.currentIndex++
	return q.Current()
}

// HasNext returns true if there is a song after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex < len(q.songs)-1
}

// Previous moves the cursor back and returns the new current song.
// Returns nil if the cursor is already at the start.
func (q *Queue) Previous() *cache.Song {
	if !q.HasPrevious() {
		return nil
	}
	q.currentIndex--
	return q.Current()
}

// HasPrevious returns true if there is a song before the current one.
func (q *Queue) HasPrevious() bool {
	return q.currentIndex > 0
}

// JumpTo sets the cursor to the given position.
// Returns the song at that position, or nil if the index is invalid.
func (q *Queue) JumpTo(index int) *cache.Song {
	if index < 0 || index >= len(q.songs) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Add appends songs without changing the cursor.
func (q *Queue) Add(songs ...cache.Song) {
	q.songs = append(q.songs, songs...)
}

// AddAndPlay appends songs and moves the cursor to the first added one.
// Returns the song to play.
func (q *Queue) AddAndPlay(songs ...cache.Song) *cache.Song {
	if len(songs) == 0 {
		return nil
	}
	insertIndex := len(q.songs)
	q.songs = append(q.songs, songs...)
	q.currentIndex = insertIndex
	return q.Current()
}

// Replace swaps the whole queue for the given songs and moves the
// cursor to the given start index. Returns the song to play, or nil
// if the queue is empty or the index invalid.
func (q *Queue) Replace(songs []cache.Song, startIndex int) *cache.Song {
	q.songs = append([]cache.Song(nil), songs...)
	q.currentIndex = -1
	if len(q.songs) == 0 {
		return nil
	}
	if startIndex < 0 || startIndex >= len(q.songs) {
		startIndex = 0
	}
	q.currentIndex = startIndex
	return q.Current()
}

// RemoveAt removes the song at the given index, shifting later songs
// down. If the removed song is before the cursor, the cursor follows
// its song; if it is the cursor itself, the cursor stays put and now
// points at the next song, clamped at the new end.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.songs) {
		return false
	}
	q.songs = append(q.songs[:index], q.songs[index+1:]...)

	if q.currentIndex > index {
		q.currentIndex--
	} else if q.currentIndex == index {
		if q.currentIndex >= len(q.songs) {
			q.currentIndex = len(q.songs) - 1
		}
	}
	return true
}

// Clear removes all songs and resets the cursor.
func (q *Queue) Clear() {
	q.songs = nil
	q.currentIndex = -1
}

// Songs returns a copy of the queued songs.
func (q *Queue) Songs() []cache.Song {
	return append([]cache.Song(nil), q.songs...)
}

// Len returns the number of queued songs.
func (q *Queue) Len() int {
	return len(q.songs)
}

// IsEmpty returns true if the queue has no songs.
func (q *Queue) IsEmpty() bool {
	return len(q.songs) == 0
}
