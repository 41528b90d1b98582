package cache

import "database/sql"

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS artists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sort_name TEXT NOT NULL DEFAULT '',
			album_count INTEGER NOT NULL DEFAULT 0,
			song_count INTEGER NOT NULL DEFAULT 0,
			followed INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS albums (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			artist_id TEXT REFERENCES artists(id) ON DELETE CASCADE,
			album_artist_id TEXT REFERENCES artists(id) ON DELETE CASCADE,
			year INTEGER,
			cover_path TEXT,
			song_count INTEGER NOT NULL DEFAULT 0,
			duration INTEGER NOT NULL DEFAULT 0,
			liked INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_albums_artist ON albums(artist_id);

		CREATE TABLE IF NOT EXISTS songs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			album_id TEXT REFERENCES albums(id) ON DELETE CASCADE,
			artist_id TEXT REFERENCES artists(id) ON DELETE CASCADE,
			track_number INTEGER,
			disc_number INTEGER,
			duration INTEGER NOT NULL DEFAULT 0,
			file_path TEXT,
			file_size INTEGER NOT NULL DEFAULT 0,
			modified_at INTEGER,
			bitrate INTEGER NOT NULL DEFAULT 0,
			format TEXT,
			liked INTEGER NOT NULL DEFAULT 0,
			play_count INTEGER NOT NULL DEFAULT 0,
			last_played_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(album_id);
		CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist_id);
		CREATE INDEX IF NOT EXISTS idx_songs_title ON songs(title COLLATE NOCASE);

		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT '',
			public INTEGER NOT NULL DEFAULT 0,
			song_count INTEGER NOT NULL DEFAULT 0,
			duration INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			UNIQUE(playlist_id, song_id)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_songs ON playlist_songs(playlist_id, position);

		CREATE TABLE IF NOT EXISTS play_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			played_at INTEGER NOT NULL,
			duration_played INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_play_history_song ON play_history(song_id);
		CREATE INDEX IF NOT EXISTS idx_play_history_played_at ON play_history(played_at DESC);

		CREATE TABLE IF NOT EXISTS lyrics (
			id TEXT PRIMARY KEY,
			song_id TEXT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			synced INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			UNIQUE(song_id, language, synced)
		);
	`)
	return err
}
