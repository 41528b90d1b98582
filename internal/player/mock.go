package player

import (
	"sync"
	"time"
)

// Mock is a test double for Player. Synchronized like the real
// transport, so engine tests run clean under the race detector.
type Mock struct {
	mu sync.Mutex

	state       State
	position    time.Duration
	duration    time.Duration
	speed       float64
	volumeLevel float64
	muted       bool
	playErr     error
	playGate    chan struct{}
	gen         uint64
	playCalls   []string
	seekCalls   []time.Duration
	finishedCh  chan struct{}
	done        chan struct{}
}

// NewMock creates a new mock transport for testing.
func NewMock() *Mock {
	return &Mock{
		state:       Stopped,
		speed:       1.0,
		volumeLevel: 1.0,
		finishedCh:  make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

func (m *Mock) Play(url string) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.playCalls = append(m.playCalls, url)
	gate := m.playGate
	err := m.playErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		// Stopped or replaced while the gate held the load open.
		return nil
	}
	m.state = Playing
	m.position = 0
	return nil
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = Stopped
	m.position = 0
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Playing:
		m.state = Paused
	case Paused:
		m.state = Playing
	case Stopped:
		// Nothing to toggle when stopped
	}
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Seek(delta time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, delta)
	m.position += delta
}

func (m *Mock) SeekTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos-m.position)
	m.position = pos
}

func (m *Mock) SetSpeed(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
}

func (m *Mock) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumeLevel = level
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volumeLevel
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Mock) FinishedChan() <-chan struct{} {
	return m.finishedCh
}

func (m *Mock) Done() <-chan struct{} {
	return m.done
}

// Test helpers

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) PlayCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.playCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// HoldPlay makes subsequent Play calls block until the returned
// release function runs, simulating a slow stream download. The
// release function is safe to call more than once.
func (m *Mock) HoldPlay() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.playGate = gate
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.playGate = nil
			m.mu.Unlock()
			close(gate)
		})
	}
}

// SimulateFinished simulates a track finishing.
func (m *Mock) SimulateFinished() {
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}

// Verify Mock implements Transport at compile time.
var _ Transport = (*Mock)(nil)
