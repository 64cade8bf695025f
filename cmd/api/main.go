// Package main is the entry point for the driver compliance API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
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
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/driver-compliance/backend/internal/config"
	"github.com/pkordes/driver-compliance/backend/internal/events"
	"github.com/pkordes/driver-compliance/backend/internal/handler"
	"github.com/pkordes/driver-compliance/backend/internal/lock"
	"github.com/pkordes/driver-compliance/backend/internal/logging"
	"github.com/pkordes/driver-compliance/backend/internal/metrics"
	"github.com/pkordes/driver-compliance/backend/internal/middleware"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
	"github.com/pkordes/driver-compliance/backend/internal/service"
	"github.com/pkordes/driver-compliance/backend/migrations"
	"github.com/pkordes/driver-compliance/backend/spec"
)

// journeyLockWait is how long an evaluation waits for a busy driver-day
// before answering 409.
const journeyLockWait = 3 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	logger, logCloser := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Database ---------------------------------------------------------
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("database connection established", "max_conns", cfg.DBMaxConns)

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool); err != nil {
			return err
		}
	}

	// --- Optional infrastructure -------------------------------------------
	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker.Close()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher.Close()

	metrics.Register(prometheus.DefaultRegisterer)

	// --- Services ---------------------------------------------------------
	drivers := repo.NewDriverRepo(pool)
	records := repo.NewTimeRecordRepo(pool)
	journeys := repo.NewJourneyRepo(pool)
	audits := repo.NewAuditRepo(pool)

	auditSvc := service.NewAuditService(journeys, audits, publisher, logger)
	server := handler.NewServer(handler.Services{
		Drivers:     service.NewDriverService(drivers),
		TimeRecords: service.NewTimeRecordService(drivers, records),
		Journeys:    service.NewJourneyService(drivers, records, journeys, auditSvc, locker, logger),
		Audits:      auditSvc,
		Reports:     service.NewReportService(drivers, audits),
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → Instrument → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	// Instrument records Prometheus request metrics per route pattern.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", metrics.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		//nolint:errcheck
		w.Write(spec.OpenAPI)
	})
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for a full lock wait plus evaluation.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// newPool opens a tuned pgx pool and verifies the database is reachable
// before accepting traffic.
func newPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// migrate applies pending goose migrations through a database/sql view of the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}

// newLocker returns a Redis-backed journey locker when REDIS_ADDR is set and
// a no-op locker otherwise.
func newLocker(ctx context.Context, cfg config.Config) (lock.Locker, io.Closer, error) {
	if cfg.RedisAddr == "" {
		slog.Info("journey lock disabled; relying on the journeys unique constraint")
		return lock.NopLocker{}, io.NopCloser(nil), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	locker, err := lock.NewRedisLocker(client, cfg.JourneyLockTTL, journeyLockWait)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	slog.Info("journey lock enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.JourneyLockTTL.String())
	return locker, client, nil
}

// newPublisher returns a Kafka audit event publisher when KAFKA_BROKERS is set
// and a no-op publisher otherwise.
func newPublisher(cfg config.Config) (events.Publisher, io.Closer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		slog.Info("audit event publishing disabled")
		return events.NopPublisher{}, io.NopCloser(nil), nil
	}
	pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic, "driver-compliance-api")
	if err != nil {
		return nil, nil, err
	}
	slog.Info("audit event publishing enabled", "topic", cfg.KafkaAuditTopic)
	return pub, pub, nil
}
