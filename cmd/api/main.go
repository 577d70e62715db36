// @title                       Notes API
// @version                     1.0
// @description                 Session and account management for the notes app.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/notekeeper/notes-api/internal/api"
	"github.com/notekeeper/notes-api/internal/api/handler"
	"github.com/notekeeper/notes-api/internal/core/service"
	"github.com/notekeeper/notes-api/internal/infrastructure/auth"
	mongodb "github.com/notekeeper/notes-api/internal/infrastructure/db/mongo"
	redisdb "github.com/notekeeper/notes-api/internal/infrastructure/db/redis"
	"github.com/notekeeper/notes-api/internal/pkg/config"
	"github.com/notekeeper/notes-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		// Init is a no-op when run already initialised the logger.
		log := logger.Init(logger.Options{})
		log.Error().Err(err).Msg("service stopped")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "notes-api",
	})
	boot := logger.Component("bootstrap")

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			boot.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	users := mongodb.NewUserRepository(db)
	notes := mongodb.NewNoteRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, notes); err != nil {
		return err
	}

	cache, optional, closeCache := connectCache(ctx, cfg, boot)
	defer closeCache()

	issuer, err := auth.NewJWTIssuer(cfg.Session.JWTSecret, cfg.Session.TTL)
	if err != nil {
		return err
	}
	hasher := auth.NewBcryptHasher(cfg.Session.BcryptCost)

	router := api.NewRouter(api.Dependencies{
		Sessions: service.NewSessionService(users, notes, hasher, issuer, cache, log),
		Notes:    service.NewNoteService(notes, users, log),
		Issuer:   issuer,
		Cookie: handler.CookieOptions{
			Name:     cfg.Session.CookieName,
			Secure:   cfg.Session.CookieSecure,
			SameSite: handler.ParseSameSite(cfg.Session.CookieSameSite),
		},
		CORSOrigins: cfg.CORSOrigins,
		Readiness: handler.NewReadinessHandler(
			map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(db)},
			optional,
		),
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		boot.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	boot.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return router.Shutdown(shutdownCtx)
}

// connectCache wires the optional Redis profile cache. When Redis is not
// configured or unreachable, the service runs without a cache.
func connectCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (service.ProfileCache, map[string]handler.DependencyCheck, func()) {
	noop := func() {}
	if cfg.Redis.Addr == "" {
		log.Info().Msg("profile cache disabled")
		return nil, nil, noop
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, continuing without profile cache")
		return nil, nil, noop
	}

	checks := map[string]handler.DependencyCheck{"redis": handler.RedisCheck(rdb)}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
	return redisdb.NewProfileCache(rdb, cfg.Redis.CacheTTL), checks, closeFn
}
