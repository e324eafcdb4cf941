// Package main is the entry point for the cargotrack API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/cargotrack/backend/internal/config"
	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/handler"
	"github.com/pkordes/cargotrack/backend/internal/jobs"
	"github.com/pkordes/cargotrack/backend/internal/metrics"
	"github.com/pkordes/cargotrack/backend/internal/middleware"
	"github.com/pkordes/cargotrack/backend/internal/repo"
	"github.com/pkordes/cargotrack/backend/internal/service"
	"github.com/pkordes/cargotrack/backend/migrations"
	"github.com/pkordes/cargotrack/backend/spec"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		// goose drives database/sql; borrow the pool instead of opening a second one.
		db := stdlib.OpenDBFromPool(pool)
		version, err := migrations.Up(ctx, db)
		db.Close()
		if err != nil {
			return err
		}
		logger.Info("migrations applied", "version", version)
	}

	// --- Services ---------------------------------------------------------
	uow := repo.NewUnitOfWork(pool,
		repo.WithTimeout(cfg.StorageTimeout),
		repo.WithMaxRetries(cfg.TxMaxRetries),
	)
	engine := service.NewCapacityEngine(uow)
	server := handler.NewServer(
		service.NewVehicleService(uow),
		service.NewTripService(uow, domain.Destinations(cfg.Destinations), logger),
		service.NewCargoService(uow, logger),
		engine,
		service.NewExportService(uow),
		logger,
	)

	// --- Router -----------------------------------------------------------
	// RequestID → RealIP → Logger → Recoverer → CORS → body limit → metrics.
	// Request validation wraps only /api/v1 (see handler.Server.Routes).
	doc, err := spec.Load(ctx)
	if err != nil {
		return err
	}
	validate, err := middleware.NewOpenAPIValidator(doc)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetricsHandler())

	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	server.Routes(r, validate)

	// --- Capacity audit ---------------------------------------------------
	if cfg.AuditSchedule != "" {
		audit := jobs.NewCapacityAuditJob(engine, cfg.StorageTimeout, logger)
		if err := audit.Start(cfg.AuditSchedule); err != nil {
			return err
		}
		defer audit.Stop()
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// In-flight requests get up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
