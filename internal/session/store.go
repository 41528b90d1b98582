// Package session persists the auth session, user preferences and the
// saved play queue. Tokens are kept in memory after Open so reads on the
// request path never touch the database.
package session

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "cadence"
	dbFileName = "session.db"

	prefClientID = "client_id"
)

// Store is the SQLite-backed session store.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	access  string
	refresh string

	subMu      sync.Mutex
	accessSubs []chan string
	logoutSubs []chan struct{}
}

// Open opens the session store at the default XDG data location.
func Open() (*Store, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the session store at the given path.
// Use ":memory:" for tests.
func OpenPath(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.loadTokens(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) loadTokens() error {
	var access, refresh string
	err := s.db.QueryRow(`
		SELECT access_token, refresh_token FROM auth_session WHERE id = 1
	`).Scan(&access, &refresh)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	s.access = access
	s.refresh = refresh
	return nil
}

// Close closes the store and all subscriber channels.
func (s *Store) Close() error {
	s.subMu.Lock()
	for _, ch := range s.accessSubs {
		close(ch)
	}
	for _, ch := range s.logoutSubs {
		close(ch)
	}
	s.accessSubs = nil
	s.logoutSubs = nil
	s.subMu.Unlock()

	return s.db.Close()
}

// Access returns the current access token, or empty string if absent.
func (s *Store) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// Refresh returns the current refresh token, or empty string if absent.
func (s *Store) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Save persists both tokens atomically.
func (s *Store) Save(access, refresh string) error {
	_, err := s.db.Exec(`
		INSERT INTO auth_session (id, access_token, refresh_token, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = excluded.updated_at
	`, access, refresh, time.Now().Unix())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()

	s.notifyAccess(access)
	return nil
}

// SaveAccess persists a new access token, keeping the refresh token.
func (s *Store) SaveAccess(access string) error {
	s.mu.RLock()
	refresh := s.refresh
	s.mu.RUnlock()

	return s.Save(access, refresh)
}

// Clear removes both tokens and fires the logout signal.
// Persistence failures are swallowed: callers always observe a cleared
// session, the row is removed on the next successful write.
func (s *Store) Clear() {
	_, _ = s.db.Exec(`DELETE FROM auth_session WHERE id = 1`)

	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()

	s.notifyAccess("")
	s.notifyLogout()
}

// WatchAccess returns a channel that receives the current access token
// immediately and every subsequent change. The channel is closed on
// store Close.
func (s *Store) WatchAccess() <-chan string {
	ch := make(chan string, 8)
	ch <- s.Access()

	s.subMu.Lock()
	s.accessSubs = append(s.accessSubs, ch)
	s.subMu.Unlock()
	return ch
}

// WatchLogout returns a channel that receives one signal per Clear call.
func (s *Store) WatchLogout() <-chan struct{} {
	ch := make(chan struct{}, 4)

	s.subMu.Lock()
	s.logoutSubs = append(s.logoutSubs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notifyAccess(token string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.accessSubs {
		select {
		case ch <- token:
		default:
			// Drop if buffer full
		}
	}
}

func (s *Store) notifyLogout() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.logoutSubs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// GetPref returns a stored preference value, or empty string if unset.
func (s *Store) GetPref(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetPref stores a preference value.
func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// ClientID returns the persistent client instance id, generating one on
// first use.
func (s *Store) ClientID() (string, error) {
	id, err := s.GetPref(prefClientID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.SetPref(prefClientID, id); err != nil {
		return "", err
	}
	return id, nil
}
