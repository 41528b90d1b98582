package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"cadence/internal/api"
	"cadence/internal/auth"
	"cadence/internal/cache"
	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/errmsg"
	"cadence/internal/host"
	"cadence/internal/mpris"
	"cadence/internal/playback"
	"cadence/internal/player"
	"cadence/internal/repo"
	"cadence/internal/session"
)

const syncInterval = 15 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	tokens  *session.Store
	cache   *cache.Cache
	client  *api.Client
	gateway *auth.Gateway
	sync    *catalog.Engine
	repos   *repo.Repos
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	if !cfg.HasServer() {
		return fmt.Errorf("no server configured: set server.url in config.toml")
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	tokens, err := session.Open()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	defer tokens.Close()

	clientID, err := tokens.ClientID()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	client := api.New(cfg.Server.URL, tokens, clientID)

	c, err := cache.Open()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpInitialize, err))
	}
	defer c.Close()

	entry := logrus.NewEntry(log)
	a := &app{
		cfg:     cfg,
		log:     log,
		tokens:  tokens,
		cache:   c,
		client:  client,
		gateway: auth.New(client, tokens, log),
		sync:    catalog.New(client, c, entry),
		repos:   repo.New(client, c, entry),
	}

	login := flag.Bool("login", false, "sign in and exit")
	logout := flag.Bool("logout", false, "sign out and exit")
	syncOnly := flag.Bool("sync", false, "sync the library and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *login:
		return a.login(ctx)
	case *logout:
		a.gateway.Logout(ctx)
		fmt.Println("Signed out.")
		return nil
	case *syncOnly:
		return a.sync.Sync(ctx)
	default:
		return a.serve(ctx)
	}
}

// login prompts for credentials on the terminal and persists the
// session.
func (a *app) login(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)

	username := a.cfg.Server.Username
	if username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		username = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	password := strings.TrimSpace(line)

	sess, err := a.gateway.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpLogin, err))
	}
	fmt.Printf("Signed in as %s.\n", sess.User.Username)
	return nil
}

// serve runs the playback daemon until the context is cancelled.
func (a *app) serve(ctx context.Context) error {
	if !a.gateway.LoggedIn() {
		return fmt.Errorf("not signed in: run with -login first")
	}

	transport := player.New(a.client.HTTPClient())
	engine := playback.New(transport, a.client, a.repos.History, logrus.NewEntry(a.log))
	defer engine.Release()

	h := host.New(logrus.NewEntry(a.log))
	h.Attach(engine)
	defer h.Detach()

	adapter, err := mpris.New(h, a.client)
	if err != nil {
		a.log.WithError(err).Warn("mpris unavailable")
	} else {
		defer adapter.Close()
	}

	a.restoreQueue(ctx, engine)
	defer a.saveQueue(engine)

	// Keep the mirror fresh. The first sync runs immediately so a new
	// install has a library to play.
	go a.syncLoop(ctx)

	// A session clear means credentials are gone for good; shut down.
	select {
	case <-ctx.Done():
	case <-a.tokens.WatchLogout():
		a.log.Info("session cleared, shutting down")
	}
	return nil
}

func (a *app) syncLoop(ctx context.Context) {
	if err := a.sync.Sync(ctx); err != nil {
		a.log.Error(errmsg.Format(errmsg.OpSyncLibrary, err))
	}

	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.sync.Sync(ctx); err != nil {
				a.log.Error(errmsg.Format(errmsg.OpSyncLibrary, err))
			}
		}
	}
}

// restoreQueue reloads the last saved queue without starting playback.
func (a *app) restoreQueue(ctx context.Context, engine *playback.Engine) {
	saved, err := a.tokens.GetQueue()
	if err != nil {
		a.log.Warn(errmsg.Format(errmsg.OpQueueLoad, err))
		return
	}
	if len(saved.SongIDs) == 0 {
		return
	}

	songs, index := rebuildQueue(saved.SongIDs, saved.CurrentIndex, func(id string) (*cache.Song, error) {
		return a.cache.SongByID(ctx, id)
	})

	engine.RestoreQueue(songs, index, playback.RepeatMode(saved.RepeatMode), saved.Shuffle, saved.Speed)
}

// rebuildQueue resolves saved song ids against the cache, dropping
// songs that left the library. A drop before the cursor shifts it left
// one slot; dropping the cursor's own song leaves it on the successor.
func rebuildQueue(ids []string, index int, lookup func(id string) (*cache.Song, error)) ([]cache.Song, int) {
	songs := make([]cache.Song, 0, len(ids))
	dropsBefore := 0
	for i, id := range ids {
		song, err := lookup(id)
		if err != nil {
			if i < index {
				dropsBefore++
			}
			continue
		}
		songs = append(songs, *song)
	}
	index -= dropsBefore
	if index >= len(songs) {
		index = len(songs) - 1
	}
	return songs, index
}

func (a *app) saveQueue(engine *playback.Engine) {
	st := engine.State()
	ids := make([]string, len(st.Queue))
	for i, s := range st.Queue {
		ids[i] = s.ID
	}
	err := a.tokens.SaveQueue(session.QueueState{
		CurrentIndex: st.CurrentIndex,
		RepeatMode:   int(st.RepeatMode),
		Shuffle:      st.Shuffle,
		Speed:        st.Speed,
		SongIDs:      ids,
	})
	if err != nil {
		a.log.Warn(errmsg.Format(errmsg.OpQueueSave, err))
	}
}
