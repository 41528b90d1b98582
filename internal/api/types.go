package api

import "time"

// User is the server's account representation.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Song is the wire representation of a song.
type Song struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	AlbumID      string     `json:"albumId"`
	ArtistID     string     `json:"artistId"`
	AlbumName    string     `json:"albumName,omitempty"`
	ArtistName   string     `json:"artistName,omitempty"`
	TrackNumber  int        `json:"trackNumber"`
	DiscNumber   int        `json:"discNumber"`
	Duration     int        `json:"duration"` // seconds
	FilePath     string     `json:"filePath"`
	FileSize     int64      `json:"fileSize"`
	ModifiedTime *time.Time `json:"modifiedTime,omitempty"`
	Bitrate      int        `json:"bitrate"`
	Format       string     `json:"format"`
	Liked        bool       `json:"liked"`
	PlayCount    int        `json:"playCount"`
	LastPlayedAt *time.Time `json:"lastPlayedAt,omitempty"`
}

// Album is the wire representation of an album. Songs may be embedded.
type Album struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistID      string `json:"artistId"`
	AlbumArtistID string `json:"albumArtistId"`
	Year          int    `json:"year"`
	CoverPath     string `json:"coverPath"`
	SongCount     int    `json:"songCount"`
	Duration      int    `json:"duration"` // seconds
	Liked         bool   `json:"liked"`
	Songs         []Song `json:"songs,omitempty"`
}

// Artist is the wire representation of an artist.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SortName   string `json:"sortName"`
	AlbumCount int    `json:"albumCount"`
	SongCount  int    `json:"songCount"`
	Followed   bool   `json:"followed"`
}

// Playlist is the wire representation of a playlist. Songs are embedded
// in membership order.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Public      bool   `json:"public"`
	SongCount   int    `json:"songCount"`
	Duration    int    `json:"duration"` // seconds
	Songs       []Song `json:"songs,omitempty"`
}

// Lyrics is the wire representation of song lyrics.
type Lyrics struct {
	ID       string `json:"id"`
	SongID   string `json:"songId"`
	Content  string `json:"content"`
	Synced   bool   `json:"synced"`
	Source   string `json:"source"`   // "embedded", "external-lrc", "external-txt"
	Language string `json:"language"` // ISO 639-1 code
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type playRecord struct {
	SongID         string    `json:"songId"`
	PlayedAt       time.Time `json:"playedAt"`
	DurationPlayed int       `json:"durationPlayed"` // seconds
	Completed      bool      `json:"completed"`
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type playlistSongsRequest struct {
	SongIDs []string `json:"songIds"`
}
