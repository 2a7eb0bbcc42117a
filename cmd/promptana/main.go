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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihttp "github.com/promptana/promptana/internal/adapter/http"
	"github.com/promptana/promptana/internal/adapter/openrouter"
	"github.com/promptana/promptana/internal/adapter/otel"
	"github.com/promptana/promptana/internal/adapter/postgres"
	"github.com/promptana/promptana/internal/config"
	"github.com/promptana/promptana/internal/logger"
	"github.com/promptana/promptana/internal/middleware"
	"github.com/promptana/promptana/internal/resilience"
	"github.com/promptana/promptana/internal/service"
)

func main() {
	migrateDown := flag.Int("migrate-down", 0, "roll back N migrations and exit")
	migrateStatus := flag.Bool("migrate-status", false, "print the current migration version and exit")
	flag.Parse()

	if err := run(*migrateDown, *migrateStatus); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(migrateDown int, migrateStatus bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"models", len(cfg.OpenRouter.Models),
	)

	ctx := context.Background()

	if migrateStatus {
		v, err := postgres.MigrationVersion(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("migration version: %w", err)
		}
		fmt.Printf("migration version: %d\n", v)
		return nil
	}
	if migrateDown > 0 {
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, migrateDown); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		slog.Info("migrations rolled back", "steps", migrateDown)
		return nil
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	shutdownTracer := otel.InitTracer(cfg.Logging.Service)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Warn("tracer shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---

	store := postgres.NewStore(pool)

	chat := openrouter.NewClient(cfg.OpenRouter)
	chat.SetBreaker(resilience.NewBreaker(5, 30*time.Second))

	authSvc := service.NewAuthService(store, cfg.Auth)
	handlers := apihttp.NewHandlers(
		authSvc,
		service.NewCatalogService(store),
		service.NewTagService(store),
		service.NewPromptService(store),
		service.NewVersionService(store),
		service.NewRunService(store, chat, service.NewPassthroughPreflight(), metrics, cfg.OpenRouter),
		service.NewImproveService(store, chat, metrics, cfg.OpenRouter),
		service.NewSettingsService(store),
	)

	// --- HTTP ---

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	stopCleanup := limiter.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)
	defer stopCleanup()

	r := chi.NewRouter()
	r.Use(apihttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(apihttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(limiter.Handler)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(90 * time.Second))
	r.Use(middleware.Auth(authSvc))

	apihttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
