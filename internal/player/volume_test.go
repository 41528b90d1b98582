package player

import "testing"

func TestGainFor(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{1.0, 0},
		{0.5, -1},
		{0.25, -2},
		{0, -10},
		{-0.3, -10},
		{1.7, 0},
	}
	for _, tt := range tests {
		if got := gainFor(tt.level); got != tt.want {
			t.Errorf("gainFor(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestMockVolume(t *testing.T) {
	m := NewMock()
	if m.Volume() != 1.0 {
		t.Errorf("Volume() = %v, want 1.0", m.Volume())
	}
	m.SetVolume(0.4)
	if m.Volume() != 0.4 {
		t.Errorf("Volume() = %v, want 0.4", m.Volume())
	}
	m.SetMuted(true)
	if !m.Muted() {
		t.Error("Muted() = false, want true")
	}
	if m.Volume() != 0.4 {
		t.Errorf("Volume() after mute = %v, want 0.4", m.Volume())
	}
}
