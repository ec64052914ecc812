// Package main is the entry point for the Aeroholder API server.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ShewonGun/Aeroholder/internal/config"
	"github.com/ShewonGun/Aeroholder/internal/handler"
	"github.com/ShewonGun/Aeroholder/internal/metrics"
	"github.com/ShewonGun/Aeroholder/internal/middleware"
	"github.com/ShewonGun/Aeroholder/internal/repo"
	"github.com/ShewonGun/Aeroholder/internal/service"
	"github.com/ShewonGun/Aeroholder/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Default handler writes to stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Services ---------------------------------------------------------
	m := metrics.New(prometheus.DefaultRegisterer)
	repos := repo.NewRepos(pool)
	tx := repo.NewTxRunner(pool)
	server := handler.NewServer(
		service.NewShareholderService(repos, tx, m),
		service.NewTripService(repos, tx, m),
		logger,
	)

	// --- Router -----------------------------------------------------------
	// Order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.Handler())
	server.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations over a database/sql view of pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	results, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
