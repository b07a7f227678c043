// Package main is the entrypoint for the boxdscrape API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/boxdscrape/internal/api"
	"github.com/kiranshivaraju/boxdscrape/internal/api/handler"
	mw "github.com/kiranshivaraju/boxdscrape/internal/api/middleware"
	"github.com/kiranshivaraju/boxdscrape/internal/api/response"
	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/cache"
	"github.com/kiranshivaraju/boxdscrape/internal/config"
	"github.com/kiranshivaraju/boxdscrape/internal/jobs"
	"github.com/kiranshivaraju/boxdscrape/internal/scraper"
	"github.com/kiranshivaraju/boxdscrape/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
	migrationsDir   = "migrations"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A .env file is optional; the environment wins over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("reading .env file", "error", err)
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"selector_set", cfg.Scraper.SelectorSet,
		"archive", cfg.Database.URL != "",
		"cache", cfg.Redis.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Dependencies{}
	checks := map[string]pinger{}
	opts, err := scraper.OptionsFromConfig(cfg.Scraper)
	if err != nil {
		return err
	}

	// 2. Ratings archive (optional)
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL, migrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		pgStore := store.NewPostgresStore(pool)
		opts.Archive = pgStore
		deps.UserRatingsHandler = handler.NewRatingsHandler(pgStore)
		checks["database"] = pgStore
	}

	// 3. Profile cache and rate limiting (optional)
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")

		opts.Cache = cache.NewProfileCache(redisCache, cfg.Redis.ProfileCacheTTL)
		deps.RateLimit = mw.NewRateLimit(redisCache, cfg.RateLimit.PerMinute)
		checks["cache"] = redisCache
	}

	// 4. Scraper
	launcher := browser.NewPlaywrightLauncher(browser.PlaywrightConfig{
		Headless:       cfg.Browser.Headless,
		ExecutablePath: cfg.Browser.ExecutablePath,
		UserAgent:      cfg.Browser.UserAgent,
		InstallDriver:  cfg.Browser.InstallDriver,
	})
	jobStore := jobs.New()
	svc := scraper.NewService(jobStore, launcher, opts)

	deps.HealthHandler = healthHandler(checks)
	deps.SubmitScrapeHandler = handler.NewSubmitHandler(svc)
	deps.ScrapeStatusHandler = handler.NewStatusHandler(svc)

	router := api.NewRouter(deps)

	// 5. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		serveErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown: stop taking requests, fail running jobs, then close
	// the browser.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("server shutdown: %w", err)
	}
	if err := svc.Close(shutdownCtx); err != nil {
		slog.Warn("scrape jobs did not finish", "error", err)
	}
	if err := launcher.Close(); err != nil {
		slog.Warn("closing browser", "error", err)
	}
	jobStore.Close()

	if serveErr != nil {
		return serveErr
	}
	slog.Info("server stopped gracefully")
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler pings every configured dependency. Unconfigured ones are
// reported as disabled and never degrade the service.
func healthHandler(checks map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := map[string]string{
			"database": "disabled",
			"cache":    "disabled",
			"scraper":  "ok",
		}

		degraded := false
		for name, p := range checks {
			if err := p.Ping(r.Context()); err != nil {
				slog.Warn("health check failed", "service", name, "error", err)
				services[name] = "degraded"
				degraded = true
				continue
			}
			services[name] = "ok"
		}

		if degraded {
			response.Status(w, http.StatusServiceUnavailable, map[string]any{
				"status":   "degraded",
				"message":  "One or more services degraded",
				"services": services,
			})
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": services,
		})
	}
}
