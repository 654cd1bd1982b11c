// @title                       Hotel Staff Auth API
// @version                     1.0
// @description                 Identity and access control for hotel staff: login, lockout, password lifecycle and user administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hotelcontrol/staff-auth/internal/api"
	"github.com/hotelcontrol/staff-auth/internal/api/handler"
	"github.com/hotelcontrol/staff-auth/internal/core/credential"
	"github.com/hotelcontrol/staff-auth/internal/core/lockout"
	"github.com/hotelcontrol/staff-auth/internal/core/service"
	"github.com/hotelcontrol/staff-auth/internal/core/token"
	"github.com/hotelcontrol/staff-auth/internal/infrastructure/db/mongo"
	"github.com/hotelcontrol/staff-auth/internal/infrastructure/db/postgres"
	"github.com/hotelcontrol/staff-auth/internal/infrastructure/db/redis"
	"github.com/hotelcontrol/staff-auth/internal/infrastructure/queue"
	"github.com/hotelcontrol/staff-auth/internal/pkg/config"
	"github.com/hotelcontrol/staff-auth/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "staff-auth",
		Env:     cfg.Env,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Persistence ---
	version, err := postgres.Migrate(cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	log.Info().Uint("schema_version", version).Msg("migrations applied")

	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:              cfg.Postgres.DSN,
		MaxConns:         cfg.Postgres.MaxConns,
		StatementTimeout: cfg.Postgres.StatementTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	events := mongo.NewAuthEventRepository(mongoDB)
	if err := events.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not created")
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Audit pipeline ---
	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, events, logger.Component("audit"))
	dispatcher.Start(dispatcherCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	// --- Core services ---
	tokens, err := token.NewService(token.Config{
		Secret:    []byte(cfg.JWT.Secret),
		Algorithm: cfg.JWT.Algorithm,
		TTL:       cfg.JWT.TTL,
	})
	if err != nil {
		return err
	}

	policy := lockout.Policy{
		MaxFailedAttempts: cfg.Security.MaxFailedAttempts,
		InactivityWindow:  cfg.Security.InactivityWindow,
	}
	hasher := credential.NewHasher(cfg.Security.BcryptCost, cfg.Security.LegacyPlaintextHashes)

	opts := []service.Option{
		service.WithRoleCache(redis.NewRoleCache(rdb, cfg.Redis.RoleTTL)),
		service.WithAuditSink(dispatcher),
		service.WithMinPasswordLength(cfg.Security.PasswordMinLength),
	}
	if cfg.Security.LegacyFixedTempPassword {
		opts = append(opts, service.WithTempPasswords(credential.FixedTempPassword{}))
	}

	authService := service.NewAuthService(store, hasher, tokens, policy, logger.Component("auth"), opts...)
	adminService := service.NewAdminService(store, hasher, policy, logger.Component("admin"), opts...)

	if cfg.Bootstrap.AdminLogin != "" {
		created, err := adminService.EnsureAdministrator(ctx, cfg.Bootstrap.AdminLogin, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("login", cfg.Bootstrap.AdminLogin).Msg("bootstrap administrator created")
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Admin:    adminService,
		Verifier: tokens,
		Readiness: map[string]handler.Pinger{
			"postgres": store,
			"mongodb":  handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		Log: logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
