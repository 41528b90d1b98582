// internal/player/interface.go
package player

import "time"

// Transport defines the audio transport contract for dependency
// injection and testing.
type Transport interface {
	Play(url string) error
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	Position() time.Duration
	Duration() time.Duration
	Seek(delta time.Duration)
	SeekTo(pos time.Duration)
	SetSpeed(speed float64)
	Speed() float64
	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	FinishedChan() <-chan struct{}
	Done() <-chan struct{}
}

// Verify Player implements Transport at compile time.
var _ Transport = (*Player)(nil)
