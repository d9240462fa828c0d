package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/drivemux/internal/adapter/driven/googledrive"
	"github.com/ericfisherdev/drivemux/internal/adapter/driven/lrucache"
	sqliteadapter "github.com/ericfisherdev/drivemux/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/drivemux/internal/adapter/driving/http"
	"github.com/ericfisherdev/drivemux/internal/application"
	"github.com/ericfisherdev/drivemux/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"cache_ttl", cfg.CacheTTL,
		"cache_size", cfg.CacheSize,
		"chunk_size", cfg.ChunkSize,
		"stream_timeout", cfg.StreamTimeout,
		"encryption", cfg.SecretKey != nil,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	accountStore := sqliteadapter.NewAccountRepo(db, cfg.SecretKey)
	factory := googledrive.NewFactory()
	listingCache := lrucache.New(cfg.CacheSize, cfg.CacheTTL)

	if accounts, err := accountStore.ListAll(ctx); err == nil {
		slog.Info("accounts loaded", "count", len(accounts))
	}

	// 6. Wire application services.
	listingSvc := application.NewListingService(accountStore, factory, listingCache, slog.Default())
	streamSvc := application.NewStreamService(accountStore, factory, cfg.ChunkSize, cfg.StreamTimeout, slog.Default())
	shareSvc := application.NewShareService(accountStore, factory, slog.Default())

	// 7. Create HTTP handler and register routes.
	handler := httphandler.NewHandler(listingSvc, streamSvc, shareSvc, accountStore, slog.Default())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Write timeout must cover an entire stream window, not a typical
		// JSON response.
		WriteTimeout: cfg.StreamTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
