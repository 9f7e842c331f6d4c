package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/livix/roommates/internal/api"
	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/config"
	"github.com/livix/roommates/internal/core"
	"github.com/livix/roommates/internal/logger"
	"github.com/livix/roommates/internal/preferences"
	"github.com/livix/roommates/internal/realtime"
	"github.com/livix/roommates/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

// backends bundles what the configured storage backend provides.
type backends struct {
	kv        store.Storage
	likes     *store.SQLiteStore
	publisher realtime.Publisher
	closers   []io.Closer
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i].Close()
	}
}

func openBackends(ctx context.Context, cfg config.Config, hub *realtime.Hub, log *logger.Logger) (*backends, error) {
	b := &backends{publisher: hub}

	likesDSN := cfg.DatabaseURL
	if cfg.StorageBackend == "memory" {
		likesDSN = ":memory:"
	}
	db, err := store.NewSQLiteStore(likesDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	b.likes = db
	b.closers = append(b.closers, db)

	switch cfg.StorageBackend {
	case "sqlite":
		b.kv = db
	case "memory":
		b.kv = store.NewMemoryStorage()
	case "redis":
		rs, err := store.NewRedisStorage(cfg.RedisAddr, "")
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis storage: %w", err)
		}
		b.kv = rs
		b.closers = append(b.closers, rs)

		bus, err := realtime.NewRedisBus(cfg.RedisAddr, "", log)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect realtime bus: %w", err)
		}
		if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
			_ = bus.Close()
			b.Close()
			return nil, err
		}
		b.publisher = bus
		b.closers = append(b.closers, bus)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	return b, nil
}

func loadScorer(path string, log *logger.Logger) *compat.Scorer {
	if path == "" {
		return compat.NewScorer(compat.DefaultWeights())
	}
	w, err := compat.LoadWeightsFromFile(path)
	if err != nil {
		log.Warn("Failed to load compatibility weights, using defaults", "path", path, "error", err)
	} else {
		log.Info("Loaded compatibility weights", "path", path, "max", w.Max())
	}
	return compat.NewScorer(w)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.LoadConfig(); err != nil {
		return err
	}
	cfg := config.AppConfig

	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()
	log.Debug("Service starting", "backend", cfg.StorageBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := realtime.NewHub(log)
	b, err := openBackends(ctx, cfg, hub, log)
	if err != nil {
		return err
	}
	defer b.Close()

	profiles := store.NewProfiles(b.kv, cfg.StorageQuotaBytes)
	prefs := preferences.NewStore(profiles)
	chats := core.NewChatService(profiles, b.publisher, cfg.SeedDemoConversations, log)
	go chats.RunEviction(ctx, cfg.ChatStoreIdleTTL, cfg.ChatStoreIdleTTL/2)
	matches := core.NewMatchService(b.likes, prefs, loadScorer(cfg.CompatWeightsPath, log), chats, log)

	apiHandler := api.NewAPIHandler(chats, matches, prefs, hub, cfg.JWTSecret, log)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	// No WriteTimeout: /api/events streams for as long as the client stays.
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
	case <-quit:
	}
	log.Info("Shutting down server")

	// Open event streams only end when their request context does.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting gracefully")
	return nil
}
