package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"cadence/internal/cache"
	"cadence/internal/player"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

type fakeURLs struct{}

func (fakeURLs) StreamURL(songID string) string {
	return "https://server/api/songs/" + songID + "/stream"
}

type recordedPlay struct {
	songID    string
	completed bool
}

type fakeRecorder struct {
	plays chan recordedPlay
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{plays: make(chan recordedPlay, 16)}
}

func (r *fakeRecorder) RecordPlay(_ context.Context, songID string, _ time.Time, _ time.Duration, completed bool) error {
	r.plays <- recordedPlay{songID: songID, completed: completed}
	return nil
}

func song(id string) cache.Song {
	return cache.Song{ID: id, Title: id, Duration: 200}
}

func songs(ids ...string) []cache.Song {
	out := make([]cache.Song, len(ids))
	for i, id := range ids {
		out[i] = song(id)
	}
	return out
}

func setupEngine(t *testing.T) (*Engine, *player.Mock) {
	t.Helper()
	m := player.NewMock()
	e := New(m, fakeURLs{}, nil, testLogger())
	t.Cleanup(e.Release)
	return e, m
}

// waitFor drains subscription states until cond holds or the deadline
// passes.
func waitFor(t *testing.T, sub *Subscription, cond func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-sub.States:
			if cond(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func TestSetQueue_StartsPlayback(t *testing.T) {
	e, m := setupEngine(t)

	e.SetQueue(songs("a", "b", "c"), 0)

	st := e.State()
	if !st.IsPlaying {
		t.Error("IsPlaying = false after SetQueue")
	}
	if st.CurrentSong == nil || st.CurrentSong.ID != "a" {
		t.Errorf("CurrentSong = %v, want a", st.CurrentSong)
	}
	if st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", st.CurrentIndex)
	}
	if calls := m.PlayCalls(); len(calls) != 1 || calls[0] != "https://server/api/songs/a/stream" {
		t.Errorf("play calls = %v", calls)
	}
}

func TestSetQueue_StartIndex(t *testing.T) {
	e, m := setupEngine(t)

	e.SetQueue(songs("a", "b", "c"), 2)

	st := e.State()
	if st.CurrentSong == nil || st.CurrentSong.ID != "c" {
		t.Errorf("CurrentSong = %v, want c", st.CurrentSong)
	}
	if calls := m.PlayCalls(); len(calls) != 1 || calls[0] != "https://server/api/songs/c/stream" {
		t.Errorf("play calls = %v", calls)
	}
}

func TestSetQueue_EmptyStops(t *testing.T) {
	e, _ := setupEngine(t)
	e.SetQueue(songs("a"), 0)

	e.SetQueue(nil, 0)

	st := e.State()
	if st.IsPlaying {
		t.Error("IsPlaying = true after clearing queue")
	}
	if st.CurrentSong != nil {
		t.Errorf("CurrentSong = %v, want nil", st.CurrentSong)
	}
}

func TestPlaybackError_LandsInState(t *testing.T) {
	e, m := setupEngine(t)
	m.SetPlayError(errors.New("decode failed"))

	e.SetQueue(songs("a"), 0)

	st := e.State()
	if st.Err == nil {
		t.Fatal("state.Err = nil, want playback error")
	}
	if st.IsPlaying {
		t.Error("IsPlaying = true after failed play")
	}

	// Recovery: the next successful command clears the fault.
	m.SetPlayError(nil)
	e.SetQueue(songs("b"), 0)
	if st := e.State(); st.Err != nil {
		t.Errorf("state.Err = %v after recovery, want nil", st.Err)
	}
}

func TestNext_AdvancesAndPlays(t *testing.T) {
	e, m := setupEngine(t)
	e.SetQueue(songs("a", "b"), 0)

	e.Next()

	st := e.State()
	if st.CurrentSong == nil || st.CurrentSong.ID != "b" {
		t.Errorf("CurrentSong = %v, want b", st.CurrentSong)
	}
	if calls := m.PlayCalls(); len(calls) != 2 {
		t.Errorf("play calls = %v", calls)
	}
}

func TestNext_AtEndIsNoOp(t *testing.T) {
	e, m := setupEngine(t)
	e.SetQueue(songs("a", "b"), 1)

	e.Next()

	st := e.State()
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", st.CurrentIndex)
	}
	if calls := m.PlayCalls(); len(calls) != 1 {
		t.Errorf("play calls = %v, want just the initial one", calls)
	}
}

func TestNext_RepeatAllWraps(t *testing.T) {
	e, _ := setupEngine(t)
	e.SetQueue(songs("a", "b"), 1)
	e.SetRepeatMode(RepeatAll)

	e.Next()

	st := e.State()
	if st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0 (wrapped)", st.CurrentIndex)
	}
}

func TestPrevious_AtStartIsNoOp(t *testing.T) {
	e, _ := setupEngine(t)
	e.SetQueue(songs("a", "b"), 0)

	e.Previous()

	if st := e.State(); st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", st.CurrentIndex)
	}
}

func TestPrevious_RestartsAfterThreshold(t *testing.T) {
	e, m := setupEngine(t)
	e.SetQueue(songs("a", "b"), 1)
	m.SetPosition(10 * time.Second)

	e.Previous()

	st := e.State()
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1 (restart, not step back)", st.CurrentIndex)
	}
	if m.Position() != 0 {
		t.Errorf("position = %v, want 0", m.Position())
	}
}

func TestRemoveFromQueue_CurrentSwitchesToNext(t *testing.T) {
	e, _ := setupEngine(t)
	e.SetQueue(songs("a", "b", "c"), 1)

	e.RemoveFromQueue(1)

	st := e.State()
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", st.CurrentIndex)
	}
	if st.CurrentSong == nil || st.CurrentSong.ID != "c" {
		t.Errorf("CurrentSong = %v, want c", st.CurrentSong)
	}
	if len(st.Queue) != 2 {
		t.Errorf("queue len = %d, want 2", len(st.Queue))
	}
}

func TestRemoveFromQueue_LastSongStops(t *testing.T) {
	e, _ := setupEngine(t)
	e.SetQueue(songs("a"), 0)

	e.RemoveFromQueue(0)

	st := e.State()
	if st.IsPlaying {
		t.Error("IsPlaying = true after removing the only song")
	}
	if st.CurrentSong != nil {
		t.Errorf("CurrentSong = %v, want nil", st.CurrentSong)
	}
}

func TestFinished_AdvancesQueue(t *testing.T) {
	e, m := setupEngine(t)
	sub := e.Subscribe()
	defer sub.Cancel()
	e.SetQueue(songs("a", "b"), 0)

	m.SimulateFinished()

	st := waitFor(t, sub, func(st State) bool {
		return st.CurrentSong != nil && st.CurrentSong.ID == "b"
	})
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", st.CurrentIndex)
	}
}

func TestFinished_EndOfQueueStops(t *testing.T) {
	e, m := setupEngine(t)
	sub := e.Subscribe()
	defer sub.Cancel()
	e.SetQueue(songs("a"), 0)

	m.SimulateFinished()

	waitFor(t, sub, func(st State) bool { return !st.IsPlaying })
	if st := e.State(); st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0 (cursor stays)", st.CurrentIndex)
	}
}

func TestFinished_RepeatOneReplays(t *testing.T) {
	e, m := setupEngine(t)
	sub := e.Subscribe()
	defer sub.Cancel()
	e.SetQueue(songs("a", "b"), 0)
	e.SetRepeatMode(RepeatOne)

	m.SimulateFinished()

	st := waitFor(t, sub, func(st State) bool {
		return st.IsPlaying && len(m.PlayCalls()) == 2
	})
	if st.CurrentSong == nil || st.CurrentSong.ID != "a" {
		t.Errorf("CurrentSong = %v, want a (replayed)", st.CurrentSong)
	}
}

func TestFinished_RecordsCompletedPlay(t *testing.T) {
	m := player.NewMock()
	rec := newFakeRecorder()
	e := New(m, fakeURLs{}, rec, testLogger())
	defer e.Release()

	e.SetQueue(songs("a"), 0)
	m.SetPosition(200 * time.Second)
	m.SimulateFinished()

	select {
	case p := <-rec.plays:
		if p.songID != "a" || !p.completed {
			t.Errorf("recorded play = %+v, want completed a", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no play recorded")
	}
}

func TestSubscribe_ReplaysCurrentState(t *testing.T) {
	e, _ := setupEngine(t)
	e.SetQueue(songs("a"), 0)

	sub := e.Subscribe()
	defer sub.Cancel()

	select {
	case st := <-sub.States:
		if st.CurrentSong == nil || st.CurrentSong.ID != "a" {
			t.Errorf("replayed state = %+v", st)
		}
	default:
		t.Fatal("Subscribe must deliver the current state immediately")
	}
}

func TestToggle_PauseResume(t *testing.T) {
	e, m := setupEngine(t)
	e.SetQueue(songs("a"), 0)

	e.Toggle()
	if m.State() != player.Paused {
		t.Errorf("transport state = %v, want Paused", m.State())
	}
	if e.State().IsPlaying {
		t.Error("IsPlaying = true while paused")
	}

	e.Toggle()
	if m.State() != player.Playing {
		t.Errorf("transport state = %v, want Playing", m.State())
	}
}

func TestSetPlaybackSpeed_AppliedToTransport(t *testing.T) {
	e, m := setupEngine(t)
	e.SetQueue(songs("a"), 0)

	e.SetPlaybackSpeed(1.5)

	if m.Speed() != 1.5 {
		t.Errorf("transport speed = %v, want 1.5", m.Speed())
	}
	if e.State().Speed != 1.5 {
		t.Errorf("state speed = %v, want 1.5", e.State().Speed)
	}
}

func TestCycleRepeatMode(t *testing.T) {
	e, _ := setupEngine(t)

	if got := e.CycleRepeatMode(); got != RepeatAll {
		t.Errorf("CycleRepeatMode() = %v, want All", got)
	}
	if got := e.CycleRepeatMode(); got != RepeatOne {
		t.Errorf("CycleRepeatMode() = %v, want One", got)
	}
	if got := e.CycleRepeatMode(); got != RepeatOff {
		t.Errorf("CycleRepeatMode() = %v, want Off", got)
	}
}

func TestStop_ShortPlayNotRecorded(t *testing.T) {
	rec := newFakeRecorder()
	m := player.NewMock()
	e := New(m, fakeURLs{}, rec, testLogger())
	t.Cleanup(e.Release)

	sub := e.Subscribe()
	defer sub.Cancel()
	e.SetQueue(songs("s1"), 0)
	waitFor(t, sub, func(st State) bool { return st.IsPlaying })

	m.SetPosition(500 * time.Millisecond)
	e.Stop()

	select {
	case p := <-rec.plays:
		t.Fatalf("sub-second play of %q was recorded", p.songID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStop_RecordsInterruptedPlay(t *testing.T) {
	rec := newFakeRecorder()
	m := player.NewMock()
	e := New(m, fakeURLs{}, rec, testLogger())
	t.Cleanup(e.Release)

	sub := e.Subscribe()
	defer sub.Cancel()
	e.SetQueue(songs("s1"), 0)
	waitFor(t, sub, func(st State) bool { return st.IsPlaying })

	m.SetPosition(5 * time.Second)
	e.Stop()

	select {
	case p := <-rec.plays:
		if p.songID != "s1" || p.completed {
			t.Errorf("recorded play = %+v, want interrupted s1", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("interrupted play was never recorded")
	}
}

func TestState_DoesNotBlockWhileLoading(t *testing.T) {
	e, m := setupEngine(t)
	release := m.HoldPlay()
	defer release()

	go e.SetQueue(songs("s1"), 0)

	deadline := time.After(2 * time.Second)
	for {
		if e.State().IsLoading {
			break
		}
		select {
		case <-deadline:
			t.Fatal("never observed the loading state")
		case <-time.After(5 * time.Millisecond):
		}
	}

	release()
	sub := e.Subscribe()
	defer sub.Cancel()
	waitFor(t, sub, func(st State) bool { return st.IsPlaying && !st.IsLoading })
}

func TestStop_SupersedesInFlightLoad(t *testing.T) {
	e, m := setupEngine(t)
	release := m.HoldPlay()

	go e.SetQueue(songs("s1"), 0)

	deadline := time.After(2 * time.Second)
	for {
		if e.State().IsLoading {
			break
		}
		select {
		case <-deadline:
			t.Fatal("never observed the loading state")
		case <-time.After(5 * time.Millisecond):
		}
	}

	e.Stop()
	release()

	sub := e.Subscribe()
	defer sub.Cancel()
	st := waitFor(t, sub, func(st State) bool { return !st.IsLoading })
	if st.IsPlaying {
		t.Error("stopped load must not start playback")
	}
}

func TestConcurrentCommandsAndSnapshots(t *testing.T) {
	e, _ := setupEngine(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				e.SetQueue(songs("s1", "s2"), i%2)
				e.Next()
				e.Toggle()
				_ = e.State()
				e.Stop()
			}
		}()
	}
	wg.Wait()
}

func TestSetVolume_ReflectedInState(t *testing.T) {
	e, m := setupEngine(t)
	sub := e.Subscribe()
	defer sub.Cancel()

	e.SetVolume(0.3)
	st := waitFor(t, sub, func(st State) bool { return st.Volume == 0.3 })
	if st.Muted {
		t.Error("Muted = true, want false")
	}
	if m.Volume() != 0.3 {
		t.Errorf("transport volume = %v, want 0.3", m.Volume())
	}

	e.SetMuted(true)
	waitFor(t, sub, func(st State) bool { return st.Muted })
	if m.Volume() != 0.3 {
		t.Errorf("mute changed the level to %v, want 0.3", m.Volume())
	}
}
