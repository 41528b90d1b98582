// Package host is the binding surface between platform shells (MPRIS,
// a remote control, a UI) and the playback engine. Commands sent while
// no engine is attached are dropped rather than queued.
package host

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cadence/internal/cache"
	"cadence/internal/playback"
)

// Host forwards playback commands to the attached engine. All methods
// are safe to call with nothing attached; such commands are logged and
// dropped.
type Host struct {
	mu     sync.RWMutex
	engine *playback.Engine
	log    *logrus.Entry
}

func New(log *logrus.Entry) *Host {
	return &Host{log: log}
}

// Attach binds an engine. A previously attached engine is replaced.
func (h *Host) Attach(e *playback.Engine) {
	h.mu.Lock()
	h.engine = e
	h.mu.Unlock()
}

// Detach unbinds the engine. Pending commands from callers race the
// detach and may still land; commands issued afterwards are dropped.
func (h *Host) Detach() {
	h.mu.Lock()
	h.engine = nil
	h.mu.Unlock()
}

// Attached reports whether an engine is bound.
func (h *Host) Attached() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine != nil
}

// State returns the engine snapshot and true, or a zero state and
// false when detached.
func (h *Host) State() (playback.State, bool) {
	h.mu.RLock()
	e := h.engine
	h.mu.RUnlock()
	if e == nil {
		return playback.State{}, false
	}
	return e.State(), true
}

// Subscribe subscribes to the attached engine, or returns nil when
// detached.
func (h *Host) Subscribe() *playback.Subscription {
	h.mu.RLock()
	e := h.engine
	h.mu.RUnlock()
	if e == nil {
		return nil
	}
	return e.Subscribe()
}

// forward runs fn against the attached engine, or drops the command.
func (h *Host) forward(op string, fn func(e *playback.Engine)) {
	h.mu.RLock()
	e := h.engine
	h.mu.RUnlock()
	if e == nil {
		h.log.WithField("op", op).Debug("command dropped, no engine attached")
		return
	}
	fn(e)
}

func (h *Host) Play()  { h.forward("play", func(e *playback.Engine) { e.Play() }) }
func (h *Host) Pause() { h.forward("pause", func(e *playback.Engine) { e.Pause() }) }
func (h *Host) Toggle() {
	h.forward("toggle", func(e *playback.Engine) { e.Toggle() })
}
func (h *Host) Stop() { h.forward("stop", func(e *playback.Engine) { e.Stop() }) }
func (h *Host) Next() { h.forward("next", func(e *playback.Engine) { e.Next() }) }
func (h *Host) Previous() {
	h.forward("previous", func(e *playback.Engine) { e.Previous() })
}

func (h *Host) SeekTo(pos time.Duration) {
	h.forward("seek_to", func(e *playback.Engine) { e.SeekTo(pos) })
}

func (h *Host) Seek(delta time.Duration) {
	h.forward("seek", func(e *playback.Engine) { e.Seek(delta) })
}

func (h *Host) SetQueue(songs []cache.Song, startIndex int) {
	h.forward("set_queue", func(e *playback.Engine) { e.SetQueue(songs, startIndex) })
}

func (h *Host) SeekToIndex(index int) {
	h.forward("seek_to_index", func(e *playback.Engine) { e.SeekToIndex(index) })
}

func (h *Host) SetRepeatMode(mode playback.RepeatMode) {
	h.forward("set_repeat", func(e *playback.Engine) { e.SetRepeatMode(mode) })
}

func (h *Host) SetShuffleMode(enabled bool) {
	h.forward("set_shuffle", func(e *playback.Engine) { e.SetShuffleMode(enabled) })
}

func (h *Host) SetPlaybackSpeed(speed float64) {
	h.forward("set_speed", func(e *playback.Engine) { e.SetPlaybackSpeed(speed) })
}

func (h *Host) SetVolume(level float64) {
	h.forward("set_volume", func(e *playback.Engine) { e.SetVolume(level) })
}

func (h *Host) SetMuted(muted bool) {
	h.forward("set_muted", func(e *playback.Engine) { e.SetMuted(muted) })
}
