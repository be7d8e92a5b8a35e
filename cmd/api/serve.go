package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pkordes/tie-inventory/internal/auth"
	"github.com/pkordes/tie-inventory/internal/config"
	"github.com/pkordes/tie-inventory/internal/handler"
	"github.com/pkordes/tie-inventory/internal/live"
	"github.com/pkordes/tie-inventory/internal/middleware"
	"github.com/pkordes/tie-inventory/internal/ratelimit"
	"github.com/pkordes/tie-inventory/internal/repo"
	"github.com/pkordes/tie-inventory/internal/service"
	"github.com/pkordes/tie-inventory/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe wires every dependency and serves until ctx is cancelled.
func runServe(ctx context.Context) error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cfg.LogLevel)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the Ping below does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	// --- Images -----------------------------------------------------------
	store, imageFiles, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("image store ready", "backend", cfg.Images.Backend)

	// --- Auth -------------------------------------------------------------
	creds, err := auth.NewCredentials(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.PasswordHash)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.Auth.SessionKey, cfg.Auth.SessionTTL)
	if err != nil {
		return err
	}
	if cfg.Auth.SessionKey == "" {
		logger.Warn("SESSION_KEY not set; sessions will not survive a restart")
	}

	// --- Services ---------------------------------------------------------
	ties := repo.NewTieRepo(pool)
	categories := repo.NewCategoryRepo(pool)
	images := service.NewImageService(store, logger)

	// --- Live queries -----------------------------------------------------
	// Every committed write to ties or categories fires a NOTIFY; each one
	// wakes the open list views, which re-run their query.
	broker := live.NewBroker()
	feed := live.NewFeed(broker, ties, logger)
	streams := live.NewRegistry()

	notifier := repo.NewNotifier(pool, logger)
	go func() {
		err := notifier.Listen(ctx, repo.InventoryChannel, func(c repo.Change) {
			logger.Debug("inventory changed", "table", c.Table, "op", c.Op, "id", c.ID)
			broker.Notify()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change listener stopped", "error", err)
		}
	}()

	loginLimiter := ratelimit.PerMinute(cfg.Auth.LoginRatePerMinute)
	go sweepLimiter(ctx, loginLimiter, logger)

	server := handler.NewServer(handler.Deps{
		Auth:          service.NewAuthService(creds, tokens),
		Ties:          service.NewTieService(ties, categories, images, logger),
		Categories:    service.NewCategoryService(categories),
		Images:        images,
		Export:        service.NewExportService(ties),
		Live:          feed,
		Streams:       streams,
		ImageFiles:    imageFiles,
		LoginLimiter:  loginLimiter,
		SecureCookies: strings.HasPrefix(cfg.PublicBaseURL, "https://"),
		Logger:        logger,
	})

	// --- Router -----------------------------------------------------------
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxUploadBytes))
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Live streams push their own write deadline forward on every event.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// Shutdown does not wait for hijacked or streaming responses on its own;
	// closing the views ends every SSE handler.
	srv.RegisterOnShutdown(streams.CloseAll)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Give in-flight requests up to 15 seconds to complete.
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newObjectStore opens the configured image backend. The fs backend also
// returns the handler that serves its files under /images.
func newObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, http.Handler, error) {
	switch cfg.Images.Backend {
	case config.ImageBackendS3:
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:  cfg.Images.S3Endpoint,
			Bucket:    cfg.Images.S3Bucket,
			AccessKey: cfg.Images.S3AccessKey,
			SecretKey: cfg.Images.S3SecretKey,
			UseSSL:    cfg.Images.S3UseSSL,
			PublicURL: cfg.Images.S3PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store, err := storage.NewFSStore(afero.NewOsFs(), cfg.Images.Dir, cfg.PublicBaseURL+"/images")
		if err != nil {
			return nil, nil, err
		}
		return store, store.Handler(), nil
	}
}

// sweepLimiter drops idle per-IP limiters so the map does not grow without bound.
func sweepLimiter(ctx context.Context, l *ratelimit.Keyed, logger *slog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				logger.Debug("login limiter swept", "removed", n)
			}
		}
	}
}
