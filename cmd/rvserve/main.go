// Command rvserve runs the relative-value HTTP API with a background
// refresh loop over the configured markets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/bondrv/config"
	"github.com/meenmo/bondrv/logging"
	"github.com/meenmo/bondrv/marketdata"
	"github.com/meenmo/bondrv/service"
	"github.com/meenmo/bondrv/snapcache"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := buildCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cache.Close()

	provider, closeProvider, err := buildProvider(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeProvider()

	engine := service.NewEngine(cfg, provider, cache, log)
	refresher := service.NewRefresher(engine, cfg.RefreshInterval)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      service.NewRouter(refresher),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := refresher.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shut down cleanly")
	return nil
}

// buildProvider serves quotes from the archive database when one is
// configured, otherwise from the bundled static tables.
func buildProvider(ctx context.Context, cfg config.Config, log *slog.Logger) (marketdata.Provider, func() error, error) {
	if !cfg.Postgres.Enabled {
		return marketdata.NewStaticProvider(), func() error { return nil }, nil
	}
	store, err := marketdata.OpenStore(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info("serving quotes from postgres archive")
	return store, store.Close, nil
}

func buildCache(ctx context.Context, cfg config.Config, log *slog.Logger) (snapcache.Cache, error) {
	if !cfg.Redis.Enabled {
		return snapcache.NewMemory(), nil
	}
	cache, err := snapcache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("using redis snapshot cache", "addr", cfg.Redis.Addr)
	return cache, nil
}
