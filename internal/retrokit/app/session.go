package app

import (
	"context"
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/cache"
	"github.com/greeddj/go-retrokit/internal/retrokit/config"
	"github.com/greeddj/go-retrokit/internal/retrokit/cores"
	"github.com/greeddj/go-retrokit/internal/retrokit/crocdb"
	"github.com/greeddj/go-retrokit/internal/retrokit/download"
	"github.com/greeddj/go-retrokit/internal/retrokit/games"
	"github.com/greeddj/go-retrokit/internal/retrokit/infra"
	"github.com/greeddj/go-retrokit/internal/retrokit/registry"
	"github.com/greeddj/go-retrokit/internal/retrokit/retroarch"
	"github.com/greeddj/go-retrokit/internal/retrokit/store"
)

// session holds the locked library store and the components built on top of it.
type session struct {
	cfg      *config.Config
	runtime  *infra.Infra
	backend  *store.Backend
	store    *store.Store
	release  func() error
	catalog  *registry.Catalog
	streamer *download.Streamer
	pack     *cache.Manager
}

func openSession(ctx context.Context, cfg *config.Config, runtime *infra.Infra) (*session, error) {
	catalog, err := registry.LoadCatalog(cfg.CatalogFile, cfg.Host)
	if err != nil {
		return nil, err
	}

	runtime.Output.Printf("🚀 load storage")
	loadStart := time.Now()
	backend := store.NewBackend(cfg.DataDir)
	if err := backend.Open(ctx); err != nil {
		return nil, err
	}
	releaseLock, err := backend.Lock(ctx)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}
	st, err := backend.LoadStore(ctx)
	if err != nil {
		_ = releaseLock()
		_ = backend.Close(ctx)
		return nil, err
	}
	runtime.Output.DebugSincef(loadStart, "%s", "load snapshot")

	streamer := download.New(runtime.Download, runtime.Events)
	pack := cache.NewManager(cache.Paths{
		DownloadsDir: cfg.DownloadsDir(),
		CacheDir:     cfg.CacheDir(),
		ResourceDir:  cfg.ResourceDir,
		PackURL:      cfg.CoresPackURL,
	}, streamer, runtime.Events, cache.WithLogger(runtime.Log))

	return &session{
		cfg:      cfg,
		runtime:  runtime,
		backend:  backend,
		store:    st,
		release:  releaseLock,
		catalog:  catalog,
		streamer: streamer,
		pack:     pack,
	}, nil
}

// close persists the store when save is set and releases the lock.
func (s *session) close(ctx context.Context, save bool) error {
	var err error
	if save {
		saveStart := time.Now()
		err = s.backend.SaveStore(ctx, s.store)
		s.runtime.Output.DebugSincef(saveStart, "%s", "save snapshot")
	}
	if s.release != nil {
		_ = s.release()
	}
	_ = s.backend.Close(ctx)
	return err
}

func (s *session) orchestrator() *cores.Orchestrator {
	return cores.New(cores.Deps{
		Catalog:      s.catalog,
		Pack:         s.pack,
		Fetcher:      s.streamer,
		CoresDir:     s.cfg.CoresDir(),
		ResourceDir:  s.cfg.ResourceDir,
		CoresBaseURL: s.cfg.CoresBaseURL,
		Sink:         s.runtime.Events,
		Recorder:     s.store,
		Log:          s.runtime.Log,
	})
}

func (s *session) crocdb() *crocdb.Client {
	return newCatalogClient(s.cfg, s.runtime, s.store)
}

func (s *session) pipeline() *games.Pipeline {
	return games.New(games.Deps{
		Source:   s.crocdb(),
		Fetcher:  s.streamer,
		Covers:   download.NewCoverFetcher(s.runtime.HTTP),
		Library:  s.store,
		GamesDir: s.cfg.GamesDir(),
		Sink:     s.runtime.Events,
		Log:      s.runtime.Log,
	})
}

func (s *session) retroarch() *retroarch.Installer {
	return retroarch.New(retroarch.Deps{
		InstallRoot: s.cfg.InstallRoot,
		Version:     s.cfg.RetroArchVersion,
		URL:         s.cfg.RetroArchURL,
		Host:        s.cfg.Host,
		Fetcher:     s.streamer,
		Pack:        s.pack,
		Recorder:    s.store,
		Sink:        s.runtime.Events,
		Log:         s.runtime.Log,
	})
}

// newCatalogClient builds a catalog client. A nil cache disables the entry cache.
func newCatalogClient(cfg *config.Config, runtime *infra.Infra, entries crocdb.EntryCache) *crocdb.Client {
	opts := []crocdb.Option{crocdb.WithLogger(runtime.Log)}
	if entries != nil {
		opts = append(opts, crocdb.WithCache(entries, crocdb.PolicyFor(cfg)))
	}
	return crocdb.New(cfg.CrocDBURL, runtime.HTTP, opts...)
}

// report prints err the way every command does and returns it.
func report(runtime *infra.Infra, err error) error {
	if err != nil {
		runtime.Output.PersistentPrintf("❌ Error: %s", err.Error())
	}
	return err
}
