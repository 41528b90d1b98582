package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetVolume sets the output level, 0.0 through 1.0. The level survives
// mute and track changes.
func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumeLevel = math.Min(math.Max(level, 0), 1)
	p.applyGainLocked()
}

// Volume returns the current output level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeLevel
}

// SetMuted silences or restores output without touching the level.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	p.applyGainLocked()
}

// Muted returns true if audio is muted.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// applyGainLocked pushes the level and mute flag onto the live volume
// node. No-op with nothing loaded; Play applies both on start.
func (p *Player) applyGainLocked() {
	if p.volume == nil {
		return
	}
	speaker.Lock()
	p.volume.Volume = gainFor(p.volumeLevel)
	p.volume.Silent = p.muted
	speaker.Unlock()
}

// gainFor maps a linear 0..1 level onto beep's log2 gain, where 0 is
// unity, -1 half volume, -2 a quarter. A zero level gets a floor gain
// instead of negative infinity.
func gainFor(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
