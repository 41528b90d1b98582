// Package cache is the local relational mirror of the remote catalog.
//
// Foreign keys are enforced with cascade deletes, so writers must insert
// parents before children; the sync engine's stage ordering exists for
// that reason. Tables that change notify watchers so repository reads
// can be reactive.
package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "cadence"
	dbFileName = "catalog.db"
)

// Cache is the SQLite-backed catalog cache.
type Cache struct {
	db *sql.DB

	watchMu  sync.Mutex
	watchers []chan string
}

// Open opens the cache at the default XDG data location.
func Open() (*Cache, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the cache at the given path. Use ":memory:" for tests.
func OpenPath(path string) (*Cache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache and all watcher channels.
func (c *Cache) Close() error {
	c.watchMu.Lock()
	for _, ch := range c.watchers {
		close(ch)
	}
	c.watchers = nil
	c.watchMu.Unlock()

	return c.db.Close()
}

// DB exposes the underlying handle for tests and maintenance tooling.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Watch returns a channel receiving the name of each table that changes.
// Sends are non-blocking; a slow subscriber misses events rather than
// stalling writers.
func (c *Cache) Watch() <-chan string {
	ch := make(chan string, 32)
	c.watchMu.Lock()
	c.watchers = append(c.watchers, ch)
	c.watchMu.Unlock()
	return ch
}

func (c *Cache) notify(table string) {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	for _, ch := range c.watchers {
		select {
		case ch <- table:
		default:
		}
	}
}

func unixPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}
