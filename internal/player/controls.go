package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// Stop stops playback, releases the decoded stream, and cancels any
// load still in flight.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	p.ctrl = nil
	p.resampler = nil
	p.volume = nil
	p.state = Stopped

	// Unblock waiters; guard against a double close when the Beep
	// callback already fired.
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseLocked()
}

func (p *Player) pauseLocked() {
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumeLocked()
}

func (p *Player) resumeLocked() {
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// Toggle toggles between playing and paused states.
func (p *Player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case Playing:
		p.pauseLocked()
	case Paused:
		p.resumeLocked()
	case Stopped:
		// Nothing to toggle when stopped
	}
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	// Read without the speaker lock - may be slightly stale but
	// avoids deadlocks from the position poller.
	return p.format.SampleRate.D(p.streamer.Position())
}

// Seek moves the playback position by the given delta.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seekToLocked(p.positionLocked() + delta)
}

// SeekTo moves the playback position to an absolute offset, clamped
// to the track bounds. Seeking at or past the end finishes the track.
func (p *Player) SeekTo(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seekToLocked(pos)
}

func (p *Player) seekToLocked(pos time.Duration) {
	if p.streamer == nil || p.state == Stopped {
		return
	}

	newPos := p.format.SampleRate.N(pos)
	newPos = max(newPos, 0)

	if newPos >= p.streamer.Len() {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
		return
	}

	speaker.Lock()
	_ = p.streamer.Seek(newPos)
	speaker.Unlock()
}
