// Command server runs the TaskRiser core API.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, TASKRISER_CONFIG, ./config.yaml, or
// /etc/taskriser/config.yaml), then TASKRISER_* environment overrides.
// The JWT and session secrets are required.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taskriser/taskriser/pkg/config"
	"github.com/taskriser/taskriser/pkg/debug"
	"github.com/taskriser/taskriser/pkg/ratelimit"
	rlmemory "github.com/taskriser/taskriser/pkg/ratelimit/memory"
	rlredis "github.com/taskriser/taskriser/pkg/ratelimit/redis"
	"github.com/taskriser/taskriser/pkg/server"
	"github.com/taskriser/taskriser/pkg/storage"
	"github.com/taskriser/taskriser/pkg/storage/memory"
	"github.com/taskriser/taskriser/pkg/storage/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	debug.Init("", "")
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create store.
	var store storage.Store
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pg.Close()
		store = pg
		logger.Info("storage enabled", "type", "postgres")
	default:
		store = memory.New()
		logger.Info("storage enabled", "type", "memory")
	}

	// Create rate limit counter store.
	var counters ratelimit.CounterStore
	switch cfg.RateLimit.Store {
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RateLimit.RedisAddr})
		defer client.Close()
		counters = rlredis.New(client)
		logger.Info("rate limiting enabled", "store", "redis", "addr", cfg.RateLimit.RedisAddr)
	default:
		counters = rlmemory.New()
		logger.Info("rate limiting enabled", "store", "memory")
	}

	srv, err := server.New(cfg, store, counters, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
