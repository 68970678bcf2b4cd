// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Krishi Mitra HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the identity store (PostgreSQL with migrations, or SQLite).
//  4. Connect to Redis when one-time codes live there.
//  5. Load the advisory catalogue.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/krishimitra/internal/advisory"
	"github.com/taibuivan/krishimitra/internal/api"
	"github.com/taibuivan/krishimitra/internal/auth"
	"github.com/taibuivan/krishimitra/internal/platform/config"
	"github.com/taibuivan/krishimitra/internal/platform/constants"
	"github.com/taibuivan/krishimitra/internal/platform/migration"
	pgstore "github.com/taibuivan/krishimitra/internal/platform/postgres"
	redisstore "github.com/taibuivan/krishimitra/internal/platform/redis"
	"github.com/taibuivan/krishimitra/internal/platform/sec"
	"github.com/taibuivan/krishimitra/internal/platform/sqlite"
	"github.com/taibuivan/krishimitra/internal/sms"
)

// identityStore is what both storage drivers provide.
type identityStore interface {
	auth.IdentityRepository
	auth.CodeRepository
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("otp_store", cfg.OTPStore),
		slog.String("sms_provider", cfg.SMSProvider),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	health := api.HealthDependencies{DatabaseName: cfg.StoreDriver}

	// ── 3. Identity store ─────────────────────────────────────────────────
	var store identityStore
	switch cfg.StoreDriver {
	case config.StorePostgres:
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		store = auth.NewPostgresStore(pool)
		health.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }

	case config.StoreSQLite:
		db, err := sqlite.Open(startupCtx, cfg.SQLitePath, log)
		must(log, err, "open sqlite")
		defer func() {
			log.Info("closing_sqlite_database")
			_ = db.Close()
		}()

		store = auth.NewSQLiteStore(db)
		health.CheckDatabase = func(ctx context.Context) error { return sqlite.Ping(ctx, db) }
	}

	// ── 4. One-time code store ────────────────────────────────────────────
	var codes auth.CodeRepository = store
	if cfg.UsesRedis() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer closeRedis(log, rdb)

		codes = auth.NewRedisCodeRepository(rdb)
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	// ── 5. Security and delivery ──────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    auth.TokenTTL,
		Issuer: constants.AuthIssuer,
	})
	must(log, err, "initialize token service")

	var dispatcher auth.CodeDispatcher = sms.NewLogDispatcher(log)
	if cfg.SMSProvider == config.SMSProviderTwilio {
		dispatcher = sms.NewTwilioDispatcher(sms.TwilioConfig{
			AccountSID:    cfg.TwilioAccountSID,
			AuthToken:     cfg.TwilioAuthToken,
			FromNumber:    cfg.TwilioFromNumber,
			BaseURL:       cfg.TwilioBaseURL,
			CountryPrefix: cfg.SMSCountryPrefix,
			Timeout:       cfg.SMSTimeout,
		})
	}

	// ── 6. Advisory catalogue ─────────────────────────────────────────────
	catalogue := advisory.DefaultCatalogue()
	if cfg.AdvisoryTablePath != "" {
		catalogue, err = advisory.LoadCatalogue(cfg.AdvisoryTablePath)
		must(log, err, "load advisory catalogue")
	}
	log.Info("advisory_catalogue_loaded",
		slog.Int("regions", len(catalogue.Regions)),
		slog.Int("entries", catalogue.Table.Len()),
	)

	// ── 7. Domain wiring ──────────────────────────────────────────────────
	authService := auth.NewService(store, codes, tokens, dispatcher, auth.Options{
		PasswordEnabled: cfg.PasswordAuthEnabled,
		CodeEnabled:     cfg.OTPAuthEnabled,
	})

	liveness, readiness := api.NewHealthHandlers(health)
	server := api.NewServer(cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Advisory:  advisory.NewHandler(advisory.NewEngine(catalogue)),
	})

	// ── 8. Graceful shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

func closeRedis(log *slog.Logger, client *goredis.Client) {
	log.Info("closing_redis_client")
	if err := client.Close(); err != nil {
		log.Error("redis_close_error", slog.Any("error", err))
	}
}

// must logs a structured fatal error and exits if err is non-nil.
// Only used during startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
