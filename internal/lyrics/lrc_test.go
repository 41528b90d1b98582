package lyrics

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Timestamps(t *testing.T) {
	input := `[ti:Song Title]
[ar:Artist Name]
[al:Album Name]
[00:12.34]First line
[00:45.60]Second line
[01:02]Third line
`
	l, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if l.Title != "Song Title" || l.Artist != "Artist Name" || l.Album != "Album Name" {
		t.Errorf("metadata = %q / %q / %q", l.Title, l.Artist, l.Album)
	}
	if len(l.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(l.Lines))
	}

	want := 12*time.Second + 340*time.Millisecond
	if l.Lines[0].Time != want {
		t.Errorf("Lines[0].Time = %v, want %v", l.Lines[0].Time, want)
	}
	if l.Lines[0].Text != "First line" {
		t.Errorf("Lines[0].Text = %q", l.Lines[0].Text)
	}
	if l.Lines[2].Time != time.Minute+2*time.Second {
		t.Errorf("Lines[2].Time = %v", l.Lines[2].Time)
	}
}

func TestParse_RepeatedTimestamps(t *testing.T) {
	input := "[00:10.00][00:30.00]Chorus line\n"

	l, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(l.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(l.Lines))
	}
	if l.Lines[0].Text != "Chorus line" || l.Lines[1].Text != "Chorus line" {
		t.Errorf("lines = %v", l.Lines)
	}
	if l.Lines[0].Time != 10*time.Second || l.Lines[1].Time != 30*time.Second {
		t.Errorf("times = %v, %v", l.Lines[0].Time, l.Lines[1].Time)
	}
}

func TestParse_SortsOutOfOrderLines(t *testing.T) {
	input := `[00:30.00]Later
[00:10.00]Earlier
`
	l, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if l.Lines[0].Text != "Earlier" || l.Lines[1].Text != "Later" {
		t.Errorf("lines = %v", l.Lines)
	}
}

func TestParse_IgnoresUntimedLines(t *testing.T) {
	input := `Some random text
[00:10.00]Real line
`
	l, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(l.Lines) != 1 {
		t.Errorf("len(Lines) = %d, want 1", len(l.Lines))
	}
}

func TestLineAt(t *testing.T) {
	l, err := ParseString("[00:10.00]One\n[00:20.00]Two\n[00:30.00]Three\n")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	tests := []struct {
		pos  time.Duration
		want int
	}{
		{5 * time.Second, -1},
		{10 * time.Second, 0},
		{15 * time.Second, 0},
		{20 * time.Second, 1},
		{time.Hour, 2},
	}
	for _, tt := range tests {
		if got := l.LineAt(tt.pos); got != tt.want {
			t.Errorf("LineAt(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestLineAt_Unsynced(t *testing.T) {
	l := ParsePlain("One\nTwo\n")

	if l.IsSynced() {
		t.Error("IsSynced() = true for plain lyrics")
	}
	if got := l.LineAt(time.Minute); got != -1 {
		t.Errorf("LineAt = %d, want -1 for unsynced lyrics", got)
	}
}

func TestParsePlain(t *testing.T) {
	l := ParsePlain("One\n\n  Two  \n")

	if len(l.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(l.Lines))
	}
	if l.Lines[1].Text != "Two" {
		t.Errorf("Lines[1].Text = %q", l.Lines[1].Text)
	}
}
