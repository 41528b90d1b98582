package cache

import "time"

// Artist is a cached artist row.
type Artist struct {
	ID         string
	Name       string
	SortName   string
	AlbumCount int
	SongCount  int
	Followed   bool
}

// Album is a cached album row.
type Album struct {
	ID            string
	Name          string
	ArtistID      string
	AlbumArtistID string
	Year          int
	CoverPath     string
	SongCount     int
	Duration      int // seconds
	Liked         bool
}

// Song is a cached song row. AlbumName and ArtistName are resolved
// from the parent tables on read; they are not stored on the song.
type Song struct {
	ID           string
	Title        string
	AlbumID      string
	ArtistID     string
	AlbumName    string
	ArtistName   string
	TrackNumber  int
	DiscNumber   int
	Duration     int // seconds
	FilePath     string
	FileSize     int64
	ModifiedAt   *time.Time
	Bitrate      int
	Format       string
	Liked        bool
	PlayCount    int
	LastPlayedAt *time.Time
}

// Playlist is a cached playlist row. Membership lives in playlist_songs.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Owner       string
	Public      bool
	SongCount   int
	Duration    int // seconds
}

// PlayEntry is one row of the append-only play history.
type PlayEntry struct {
	ID             int64
	SongID         string
	PlayedAt       time.Time
	DurationPlayed int // seconds
	Completed      bool
}

// Lyrics is a cached lyrics row, unique per (song, language, synced).
type Lyrics struct {
	ID       string
	SongID   string
	Content  string
	Synced   bool
	Source   string // "embedded", "external-lrc", "external-txt"
	Language string
}
