package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xtding233/farkle-backend/internal/config"
	"github.com/xtding233/farkle-backend/internal/events"
	"github.com/xtding233/farkle-backend/internal/farkle"
	"github.com/xtding233/farkle-backend/internal/rules"
	"github.com/xtding233/farkle-backend/internal/service"
	"github.com/xtding233/farkle-backend/internal/storage"
	"github.com/xtding233/farkle-backend/internal/storage/memory"
	"github.com/xtding233/farkle-backend/internal/storage/sqlite"
	"github.com/xtding233/farkle-backend/internal/transport/httpapi"
)

// Run wires the stores, rules and transports from cfg and serves until ctx
// ends.
func Run(ctx context.Context, cfg config.Config) error {
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	pub, err := openPublisher(cfg.NATSURL)
	if err != nil {
		return err
	}
	defer pub.Close()

	loader := rules.NewLoader(cfg.RulesDir)
	resolver := rules.FileResolver{Loader: loader}
	// fail fast on a broken rules directory
	for _, mode := range []farkle.Mode{farkle.ModeNormal, farkle.ModeLong, farkle.ModeTutorial} {
		if _, err := resolver.Resolve(mode); err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
	}
	if cfg.WatchInterval > 0 {
		watcher := rules.NewFileWatcher(loader.Paths().All(), cfg.WatchInterval, func(path string) {
			log.Printf("rules changed: %s", path)
			loader.Invalidate()
		})
		go watcher.Run(ctx)
	}

	logger := log.New(os.Stderr, log.Prefix(), log.LstdFlags)
	svc := service.New(store, resolver, service.WithPublisher(pub), service.WithLogger(logger))
	srv, err := New(cfg.HTTPAddr, cfg.GRPCAddr, httpapi.SetupRouter(svc, logger))
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func openStore(path string) (storage.Store, error) {
	if path == "" {
		log.Printf("no database path, using in-memory store")
		return memory.New(), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

func openPublisher(url string) (events.Publisher, error) {
	if url == "" {
		return events.Nop{}, nil
	}
	pub, err := events.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect events: %w", err)
	}
	return pub, nil
}
