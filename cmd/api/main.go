// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

// Command api is the entry point for the Souk Bazaar storefront API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Connect the outbound adapters: object storage, mail, events.
//  6. Wire the identity service, auth flow, per-device stores and shop.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abbassi001/souk-bazaar-hub/data/migrations"
	"github.com/abbassi001/souk-bazaar-hub/internal/api"
	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/config"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/events"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/mailer"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/migration"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/objectstore"
	pgstore "github.com/abbassi001/souk-bazaar-hub/internal/platform/postgres"
	redisstore "github.com/abbassi001/souk-bazaar-hub/internal/platform/redis"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/cart"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/checkout"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/wishlist"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/account"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/guard"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/identity"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// appCtx lives until shutdown and stops the background sweepers.
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// Misconfiguration must fail fast rather than hang.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	var migrationSource fs.FS = migrations.FS
	if cfg.MigrationPath != "" {
		migrationSource = os.DirFS(cfg.MigrationPath)
	}
	must(log, migration.RunUp(cfg.DatabaseURL, migrationSource, log), "run migrations")

	// ── 5. Outbound adapters ──────────────────────────────────────────────
	images := newObjectStore(startupCtx, cfg, log)
	mail := newMailer(cfg, log)

	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	deviceState := devicestate.NewRedisKV(rdb, cfg.DeviceStateTTL)

	identityService := identity.NewService(
		identity.NewAccountRepository(pool),
		identity.NewSessionRepository(pool),
		identity.NewConfirmTokenRepository(rdb),
		tokens,
		mail,
		publisher,
	)
	resolver := profile.NewResolver(profile.NewPostgresTable(pool), identityService, cfg.GatewayTimeout)

	controller := auth.NewController(identityService, resolver, deviceState, nil, auth.Config{
		GatewayTimeout:     cfg.GatewayTimeout,
		ConfirmRedirectURL: cfg.ConfirmRedirectURL,
	})

	// A device's live objects outlive the request that opened them.
	// A failed open is not cached, so a device whose state could not be read
	// is loaded again on its next request.
	mirrors := devicestate.NewRegistry(func(_ context.Context, deviceID string) (*auth.Mirror, error) {
		return auth.NewMirror(deviceID), nil
	}, constants.DeviceIdleTTL)
	carts := devicestate.NewRegistry(func(ctx context.Context, deviceID string) (*cart.Store, error) {
		return cart.Open(context.WithoutCancel(ctx), deviceState, nil, deviceID)
	}, constants.DeviceIdleTTL)
	wishlists := devicestate.NewRegistry(func(ctx context.Context, deviceID string) (*wishlist.Store, error) {
		return wishlist.Open(context.WithoutCancel(ctx), deviceState, nil, deviceID)
	}, constants.DeviceIdleTTL)

	go mirrors.Run(appCtx, constants.DeviceSweepInterval)
	go carts.Run(appCtx, constants.DeviceSweepInterval)
	go wishlists.Run(appCtx, constants.DeviceSweepInterval)

	catalogService := catalog.NewService(catalog.NewProductRepository(pool), images, nil)
	checkoutService := checkout.NewService(checkout.NewOrderRepository(pool), publisher, nil)
	accountService := account.NewService(
		account.NewProfileRepository(pool),
		account.NewSessionRepository(pool),
		controller,
		nil,
	)

	liveness, readiness := api.NewHealthHandlers(log,
		api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(controller, cfg.CookieSecure),
		Catalog:   catalog.NewHandler(catalogService),
		Cart:      cart.NewHandler(carts, catalogService),
		Wishlist:  wishlist.NewHandler(wishlists, catalogService),
		Checkout:  checkout.NewHandler(checkoutService, carts),
		Account:   account.NewHandler(accountService),
	}

	server := api.NewServer(appCtx, cfg, log, api.Sessions{
		Verifier: tokens,
		Restore:  auth.RestoreSession(controller, mirrors),
		Guard:    guard.New(deviceState, nil),
	}, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
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

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newObjectStore returns GCS when a bucket is configured. Without one, images
// are kept in memory, which only suits development.
func newObjectStore(ctx context.Context, cfg *config.Config, log *slog.Logger) gateway.ObjectStore {
	if cfg.GCSBucket == "" {
		if cfg.IsProduction() {
			must(log, errors.New("GCS_BUCKET is required in production"), "configure object storage")
		}
		log.Warn("object_storage_in_memory")
		return objectstore.NewMemory(cfg.GCSPublicBaseURL, "local")
	}

	client, err := objectstore.NewGCSClient(ctx, cfg.GCSEndpoint)
	must(log, err, "connect to object storage")
	return objectstore.NewGCS(client, cfg.GCSBucket, cfg.GCSPublicBaseURL)
}

func newMailer(cfg *config.Config, log *slog.Logger) mailer.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Warn("mail_delivery_logged_only")
		return mailer.NewLog()
	}
	return mailer.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFrom)
}

// newPublisher dials RabbitMQ when configured. The returned func closes it.
func newPublisher(cfg *config.Config, log *slog.Logger) (events.Publisher, func()) {
	if cfg.AMQPURL == "" {
		log.Warn("events_recorded_in_memory")
		return events.NewRecorder(), func() {}
	}

	publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.EventsExchange)
	must(log, err, "connect to rabbitmq")
	return publisher, func() {
		log.Info("closing_amqp_connection")
		if err := publisher.Close(); err != nil {
			log.Error("amqp_close_error", slog.Any("error", err))
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
