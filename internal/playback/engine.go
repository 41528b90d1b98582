// Package playback drives the play queue through the audio transport
// and fans state snapshots out to subscribers.
package playback

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cadence/internal/cache"
	"cadence/internal/player"
	"cadence/internal/queue"
)

const (
	stateBufferSize  = 16
	positionInterval = 100 * time.Millisecond
	restartThreshold = 3 * time.Second
)

// URLSource resolves a song id to its stream URL.
type URLSource interface {
	StreamURL(songID string) string
}

// Recorder receives play reports. Failures are logged, never surfaced.
type Recorder interface {
	RecordPlay(ctx context.Context, songID string, playedAt time.Time, durationPlayed time.Duration, completed bool) error
}

// Subscription delivers state snapshots. States receives the current
// state immediately on subscribe and after every change.
type Subscription struct {
	States <-chan State

	ch     chan State
	cancel func()
	once   sync.Once
}

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Engine owns the play queue and the audio transport. Commands never
// return playback errors; faults land in the state snapshot's Err
// field so observers can surface them.
type Engine struct {
	mu sync.Mutex

	transport player.Transport
	urls      URLSource
	recorder  Recorder
	queue     *queue.Queue
	log       *logrus.Entry

	repeatMode RepeatMode
	shuffle    bool
	speed      float64
	loading    bool
	lastErr    error

	// playGen invalidates loads still in flight: every playback start
	// or stop bumps it, and a load that returns under a different gen
	// was superseded and must not touch engine state.
	playGen uint64

	// Set while a song is loaded, for play reporting.
	playingID string
	startedAt time.Time

	subsMu sync.Mutex
	subs   []chan State

	done     chan struct{}
	closedMu sync.Mutex
	closed   bool
}

// New creates a playback engine. recorder may be nil to disable play
// reporting.
func New(transport player.Transport, urls URLSource, recorder Recorder, log *logrus.Entry) *Engine {
	e := &Engine{
		transport: transport,
		urls:      urls,
		recorder:  recorder,
		queue:     queue.New(),
		log:       log,
		speed:     1.0,
		done:      make(chan struct{}),
	}
	go e.run()
	return e
}

// run watches for finished tracks and ticks position updates out to
// subscribers while something is playing.
func (e *Engine) run() {
	ticker := time.NewTicker(positionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-e.transport.FinishedChan():
			e.handleFinished()
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick broadcasts a position update while something is playing. The
// transport check and the snapshot happen under the same lock the
// commands hold.
func (e *Engine) tick() {
	e.mu.Lock()
	if e.transport.State() != player.Playing {
		e.mu.Unlock()
		return
	}
	state := e.snapshotLocked()
	e.mu.Unlock()
	e.fanout(state)
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	var current *cache.Song
	if s := e.queue.Current(); s != nil {
		c := *s
		current = &c
	}
	return State{
		IsPlaying:    e.transport.State() == player.Playing,
		IsLoading:    e.loading,
		CurrentSong:  current,
		CurrentIndex: e.queue.CurrentIndex(),
		Queue:        e.queue.Songs(),
		Position:     e.transport.Position(),
		Duration:     e.transport.Duration(),
		Speed:        e.speed,
		Volume:       e.transport.Volume(),
		Muted:        e.transport.Muted(),
		RepeatMode:   e.repeatMode,
		Shuffle:      e.shuffle,
		Err:          e.lastErr,
	}
}

// Subscribe registers a state observer. The current state is delivered
// immediately; later snapshots are dropped rather than blocking a slow
// consumer.
func (e *Engine) Subscribe() *Subscription {
	ch := make(chan State, stateBufferSize)
	sub := &Subscription{States: ch, ch: ch}
	sub.cancel = func() { e.unsubscribe(ch) }

	e.subsMu.Lock()
	e.subs = append(e.subs, ch)
	e.subsMu.Unlock()

	ch <- e.State()
	return sub
}

func (e *Engine) unsubscribe(ch chan State) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, c := range e.subs {
		if c == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(c)
			return
		}
	}
}

// broadcast sends the current snapshot to every subscriber.
func (e *Engine) broadcast() {
	e.mu.Lock()
	state := e.snapshotLocked()
	e.mu.Unlock()
	e.fanout(state)
}

// broadcastLocked is broadcast for callers already holding e.mu.
func (e *Engine) broadcastLocked() {
	e.fanout(e.snapshotLocked())
}

func (e *Engine) fanout(state State) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- state:
		default:
			// Drop if buffer full
		}
	}
}

// Release stops playback and shuts the engine down. Idempotent.
func (e *Engine) Release() {
	e.closedMu.Lock()
	if e.closed {
		e.closedMu.Unlock()
		return
	}
	e.closed = true
	close(e.done)
	e.closedMu.Unlock()

	e.mu.Lock()
	e.recordStopLocked(false)
	e.stopTransportLocked()
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
	e.subsMu.Unlock()
}

// stopTransportLocked halts the transport and invalidates any load
// still in flight. Caller holds e.mu.
func (e *Engine) stopTransportLocked() {
	e.playGen++
	e.loading = false
	e.transport.Stop()
	e.playingID = ""
}

// playCurrentLocked starts the transport on the queue's current song.
// Caller holds e.mu. The lock is released while the stream downloads
// so snapshots and other commands stay responsive; a command that
// stops or replaces playback in that window wins, and the stale load
// is dropped on return.
func (e *Engine) playCurrentLocked() {
	song := e.queue.Current()
	if song == nil {
		e.stopTransportLocked()
		return
	}

	e.loading = true
	e.lastErr = nil
	e.playingID = ""
	e.broadcastLocked()

	e.playGen++
	gen := e.playGen
	songID := song.ID
	url := e.urls.StreamURL(songID)

	e.mu.Unlock()
	err := e.transport.Play(url)
	e.mu.Lock()

	if gen != e.playGen {
		return
	}
	e.loading = false
	if err != nil {
		e.lastErr = err
		e.log.WithError(err).WithField("song", songID).Error("playback failed")
		return
	}
	e.transport.SetSpeed(e.speed)
	e.playingID = songID
	e.startedAt = time.Now()
}

// handleFinished advances the queue when a track plays to its end.
func (e *Engine) handleFinished() {
	e.mu.Lock()

	e.recordLocked(true)

	switch {
	case e.repeatMode == RepeatOne:
		// Replay the same song.
	case e.shuffle && e.queue.Len() > 1:
		e.queue.JumpTo(e.randomIndexLocked())
	case e.queue.HasNext():
		e.queue.Next()
	case e.repeatMode == RepeatAll && e.queue.Len() > 0:
		e.queue.JumpTo(0)
	default:
		// End of queue: stop, keep the cursor where it is.
		e.stopTransportLocked()
		e.mu.Unlock()
		e.broadcast()
		return
	}

	e.playCurrentLocked()
	e.mu.Unlock()
	e.broadcast()
}

// randomIndexLocked picks a random queue index different from the
// current one. Caller holds e.mu and guarantees Len() > 1.
func (e *Engine) randomIndexLocked() int {
	for {
		i := rand.Intn(e.queue.Len())
		if i != e.queue.CurrentIndex() {
			return i
		}
	}
}

// recordLocked reports the song that just stopped playing. Fire and
// forget: a lost report must never disturb playback.
func (e *Engine) recordLocked(completed bool) {
	if e.recorder == nil || e.playingID == "" {
		return
	}
	songID := e.playingID
	playedAt := e.startedAt
	played := e.transport.Position()
	if completed {
		played = e.transport.Duration()
	}
	e.playingID = ""

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.recorder.RecordPlay(ctx, songID, playedAt, played, completed); err != nil {
			e.log.WithError(err).WithField("song", songID).Warn("play report failed")
		}
	}()
}

// recordStopLocked reports an interrupted play, if enough of the song
// ran to be worth reporting.
func (e *Engine) recordStopLocked(completed bool) {
	if e.playingID == "" {
		return
	}
	if e.transport.Position() < time.Second {
		e.playingID = ""
		return
	}
	e.recordLocked(completed)
}
