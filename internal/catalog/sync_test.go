package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"cadence/internal/api"
	"cadence/internal/cache"
	"cadence/internal/session"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

// library is a tiny fake server catalog used by the tests.
type library struct {
	artists   []api.Artist
	albums    []api.Album
	songs     []api.Song
	playlists []api.Playlist

	mu    sync.Mutex
	calls map[string]int

	failSongs bool
}

func defaultLibrary() *library {
	return &library{
		artists: []api.Artist{
			{ID: "ar1", Name: "Alpha"},
			{ID: "ar2", Name: "Beta"},
			{ID: "ar3", Name: "Gamma"},
		},
		albums: []api.Album{
			{ID: "al1", Name: "One", ArtistID: "ar1"},
			{ID: "al2", Name: "Two", ArtistID: "ar2"},
		},
		songs: []api.Song{
			{ID: "s1", Title: "First", AlbumID: "al1", ArtistID: "ar1"},
			{ID: "s2", Title: "Second", AlbumID: "al1", ArtistID: "ar1"},
			{ID: "s3", Title: "Third", AlbumID: "al2", ArtistID: "ar2"},
		},
		playlists: []api.Playlist{
			{ID: "p1", Name: "Mix", Songs: []api.Song{
				{ID: "s3", Title: "Third", AlbumID: "al2", ArtistID: "ar2"},
				{ID: "s1", Title: "First", AlbumID: "al1", ArtistID: "ar1"},
			}},
		},
		calls: make(map[string]int),
	}
}

func (l *library) handler() http.Handler {
	page := func(w http.ResponseWriter, r *http.Request, total int, slice func(lo, hi int) any) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if limit <= 0 {
			limit = total
		}
		lo := min(offset, total)
		hi := min(offset+limit, total)
		json.NewEncoder(w).Encode(slice(lo, hi))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/artists", func(w http.ResponseWriter, r *http.Request) {
		l.count("artists")
		page(w, r, len(l.artists), func(lo, hi int) any { return l.artists[lo:hi] })
	})
	mux.HandleFunc("GET /api/albums", func(w http.ResponseWriter, r *http.Request) {
		l.count("albums")
		page(w, r, len(l.albums), func(lo, hi int) any { return l.albums[lo:hi] })
	})
	mux.HandleFunc("GET /api/songs", func(w http.ResponseWriter, r *http.Request) {
		l.count("songs")
		if l.failSongs {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		page(w, r, len(l.songs), func(lo, hi int) any { return l.songs[lo:hi] })
	})
	mux.HandleFunc("GET /api/playlists", func(w http.ResponseWriter, r *http.Request) {
		l.count("playlists")
		json.NewEncoder(w).Encode(l.playlists)
	})
	return mux
}

func (l *library) count(stage string) {
	l.mu.Lock()
	l.calls[stage]++
	l.mu.Unlock()
}

func (l *library) callCount(stage string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[stage]
}

func setupEngine(t *testing.T, h http.Handler) (*Engine, *cache.Cache) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tokens, err := session.OpenPath(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { tokens.Close() })
	if err := tokens.Save("tok", "ref"); err != nil {
		t.Fatal(err)
	}

	c, err := cache.OpenPath(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	client := api.New(srv.URL+"/", tokens, "test-client")
	return New(client, c, testLogger()), c
}

func TestSync_FullLibrary(t *testing.T) {
	lib := defaultLibrary()
	eng, c := setupEngine(t, lib.handler())
	ctx := context.Background()

	if err := eng.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	artists, err := c.Artists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(artists) != 3 {
		t.Errorf("artists = %d, want 3", len(artists))
	}

	songs, err := c.Songs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(songs) != 3 {
		t.Errorf("songs = %d, want 3 (all parents must resolve)", len(songs))
	}

	plSongs, err := c.PlaylistSongs(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(plSongs) != 2 || plSongs[0].ID != "s3" || plSongs[1].ID != "s1" {
		t.Errorf("playlist songs = %v", plSongs)
	}

	if eng.LastSync().IsZero() {
		t.Error("LastSync should be set after a successful run")
	}
}

func TestSync_Paginates(t *testing.T) {
	lib := defaultLibrary()
	eng, c := setupEngine(t, lib.handler())
	eng.pageSize = 2
	ctx := context.Background()

	if err := eng.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	// 3 artists at page size 2 means two pages.
	if got := lib.callCount("artists"); got != 2 {
		t.Errorf("artist pages fetched = %d, want 2", got)
	}
	artists, err := c.Artists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(artists) != 3 {
		t.Errorf("artists = %d, want 3", len(artists))
	}
}

func TestSync_SecondCallIsNoOp(t *testing.T) {
	lib := defaultLibrary()
	release := make(chan struct{})
	started := make(chan struct{})
	var entered atomic.Bool

	// Wrap the handler so the first artists request blocks until the
	// overlapping Sync call has been observed returning.
	base := lib.handler()
	gated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/artists" && entered.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
		base.ServeHTTP(w, r)
	})

	eng, _ := setupEngine(t, gated)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- eng.Sync(ctx) }()

	<-started
	if !eng.Running() {
		t.Error("Running() = false while a sync is in flight")
	}

	// Overlapping call: returns nil immediately, touches nothing.
	if err := eng.Sync(ctx); err != nil {
		t.Errorf("overlapping Sync returned %v, want nil", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if got := lib.callCount("playlists"); got != 1 {
		t.Errorf("playlist fetches = %d, want 1 (overlapping sync must not run)", got)
	}
	if eng.Running() {
		t.Error("Running() = true after sync finished")
	}
}

func TestSync_PartialFailureKeepsEarlierStages(t *testing.T) {
	lib := defaultLibrary()
	lib.failSongs = true
	eng, c := setupEngine(t, lib.handler())
	ctx := context.Background()

	err := eng.Sync(ctx)
	if err == nil {
		t.Fatal("expected sync error from failing songs stage")
	}

	artists, err2 := c.Artists(ctx)
	if err2 != nil {
		t.Fatal(err2)
	}
	if len(artists) != 3 {
		t.Errorf("artists = %d, want 3 (completed stages persist)", len(artists))
	}

	songs, err2 := c.Songs(ctx)
	if err2 != nil {
		t.Fatal(err2)
	}
	if len(songs) != 0 {
		t.Errorf("songs = %d, want 0", len(songs))
	}

	if got := lib.callCount("playlists"); got != 0 {
		t.Errorf("playlist fetches = %d, want 0 (later stages skipped)", got)
	}
	if !eng.LastSync().IsZero() {
		t.Error("LastSync must stay zero after a failed run")
	}
}

func TestReport_String(t *testing.T) {
	rep := Report{
		Artists:   3,
		Albums:    12,
		Songs:     1530,
		Playlists: 2,
		Elapsed:   1234 * time.Millisecond,
	}
	want := "3 artists, 12 albums, 1,530 songs, 2 playlists in 1.234s"
	if got := rep.String(); got != want {
		t.Errorf("Report.String() = %q, want %q", got, want)
	}
}

func TestSync_LogsReport(t *testing.T) {
	lib := defaultLibrary()
	eng, _ := setupEngine(t, lib.handler())
	logger, hook := logtest.NewNullLogger()
	eng.log = logrus.NewEntry(logger)

	if err := eng.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	var msg string
	for _, entry := range hook.AllEntries() {
		if strings.HasPrefix(entry.Message, "sync complete") {
			msg = entry.Message
		}
	}
	if !strings.Contains(msg, "3 artists") || !strings.Contains(msg, "3 songs") {
		t.Errorf("completion log = %q, want the run counts in it", msg)
	}
}
