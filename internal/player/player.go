// Package player plays server audio streams through the system output.
package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// Player decodes an audio stream fetched over HTTP and plays it
// through the speaker. Safe for concurrent use: the playback engine
// polls position and state while commands arrive on other goroutines.
type Player struct {
	mu sync.Mutex

	state     State
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume
	streamer  beep.StreamSeekCloser
	format    beep.Format
	fetch     fetchFunc

	// gen invalidates loads still in flight: Stop and every Play bump
	// it, and a fetch that completes under a different gen is thrown
	// away instead of resurrecting playback.
	gen uint64

	speed       float64
	volumeLevel float64
	muted       bool

	done       chan struct{}
	finishedCh chan struct{}
	onFinished func()
}

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// New creates a player that fetches streams with the given HTTP
// client. The client carries the authenticated transport.
func New(client httpDoer) *Player {
	return &Player{
		state:       Stopped,
		speed:       1.0,
		volumeLevel: 1.0,
		fetch:       newFetcher(client),
		done:        make(chan struct{}),
		finishedCh:  make(chan struct{}, 1),
	}
}

// Play fetches and starts playback of the given stream URL. The
// download runs unlocked so state reads and Stop stay responsive; a
// Stop or newer Play issued meanwhile discards the result.
func (p *Player) Play(url string) error {
	p.Stop()

	// Small delay to let any pending Beep callback complete after speaker.Clear()
	time.Sleep(10 * time.Millisecond)

	// Drain any stale finish signal from the previous track
	select {
	case <-p.finishedCh:
	default:
	}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	body, format, err := p.fetch(url)
	if err != nil {
		return err
	}

	streamer, beepFormat, err := decode(body, format)
	if err != nil {
		body.Close()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		// Superseded while the stream was downloading.
		streamer.Close()
		return nil
	}

	if !speakerInitialized {
		speakerSampleRate = beepFormat.SampleRate
		err = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
		if err != nil {
			streamer.Close()
			return err
		}
		speakerInitialized = true
	}

	p.streamer = streamer
	p.format = beepFormat

	// One resampler handles both the sample-rate mismatch and the
	// playback speed; SetSpeed adjusts its ratio in place.
	baseRatio := float64(beepFormat.SampleRate) / float64(speakerSampleRate)
	p.resampler = beep.ResampleRatio(4, baseRatio*p.speed, streamer)
	p.ctrl = &beep.Ctrl{Streamer: p.resampler, Paused: false}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: gainFor(p.volumeLevel), Silent: p.muted}

	p.state = Playing
	p.done = make(chan struct{})

	done := p.done
	finished := p.onFinished
	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		close(done)
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
		if finished != nil {
			finished()
		}
	})))

	return nil
}

// SetSpeed changes the playback rate (1.0 = normal). Takes effect
// immediately on the playing track and persists across tracks.
func (p *Player) SetSpeed(speed float64) {
	if speed < 0.25 {
		speed = 0.25
	}
	if speed > 4.0 {
		speed = 4.0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed

	if p.resampler != nil {
		baseRatio := float64(p.format.SampleRate) / float64(speakerSampleRate)
		speaker.Lock()
		p.resampler.SetRatio(baseRatio * speed)
		speaker.Unlock()
	}
}

// Speed returns the current playback rate.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Duration returns the total length of the loaded stream.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// OnFinished registers a callback invoked when a track plays to its
// end. Not invoked on Stop. Register before the first Play.
func (p *Player) OnFinished(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFinished = fn
}

// FinishedChan returns a channel that receives one signal per track
// that plays to its end.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// Done returns a channel closed when the current track ends or is
// stopped.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
