// Command server runs the auth HTTP API.
//
//	@title						Insanos Auth Server
//	@version					1.0
//	@description				Username/password authentication issuing signed bearer tokens, with role-based access to sample resources.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insanos/auth-server/internal/api"
	"github.com/insanos/auth-server/internal/api/handler"
	"github.com/insanos/auth-server/internal/core/ports"
	"github.com/insanos/auth-server/internal/core/service"
	"github.com/insanos/auth-server/internal/infrastructure/config"
	"github.com/insanos/auth-server/internal/infrastructure/crypto"
	mongostore "github.com/insanos/auth-server/internal/infrastructure/db/mongo"
	redisstore "github.com/insanos/auth-server/internal/infrastructure/db/redis"
	"github.com/insanos/auth-server/internal/infrastructure/db/sqlite"
	"github.com/insanos/auth-server/pkg/logger"
)

const (
	serviceName     = "auth-server"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	readiness := map[string]handler.Checker{}

	store, closeStore, err := openStore(ctx, cfg, readiness)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter, closeLimiter, err := openLimiter(ctx, cfg, readiness)
	if err != nil {
		return err
	}
	defer closeLimiter()

	hasher := crypto.NewBcryptHasher(cfg.Store.BcryptCost)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	authService := service.NewAuthService(store, hasher, tokens, limiter, logger.Component("auth"))

	if cfg.Seed.Enabled {
		seeds := service.DefaultSeedUsers(cfg.Seed.UserPassword, cfg.Seed.AdminPassword)
		n, err := service.SeedUsers(ctx, store, hasher, seeds, logger.Component("seed"))
		if err != nil {
			return fmt.Errorf("seeding users: %w", err)
		}
		log.Info().Int("created", n).Msg("default users seeded")
	}

	e := api.NewRouter(api.Deps{
		Auth:         authService,
		Readiness:    readiness,
		Log:          logger.Component("http"),
		AllowOrigins: cfg.CORSAllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.Store.Driver).
			Bool("login_limiter", limiter != nil).
			Dur("token_ttl", tokens.TTL()).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, readiness map[string]handler.Checker) (ports.CredentialStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		repo, err := sqlite.Open(cfg.SQLite.Path, logger.Component("sqlite"))
		if err != nil {
			return nil, nil, err
		}
		readiness["sqlite"] = repo.Ping
		return repo, func() { _ = repo.Close() }, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return nil, nil, err
		}

		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}

		readiness["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		closer := func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return repo, closer, nil
	}
}

// openLimiter connects to Redis when configured. Without an address lockouts
// are disabled and a nil limiter is returned.
func openLimiter(ctx context.Context, cfg *config.Config, readiness map[string]handler.Checker) (ports.LoginLimiter, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}

	readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	limiter := redisstore.NewLoginLimiter(client, cfg.Login.MaxAttempts, cfg.Login.LockoutWindow)
	return limiter, func() { _ = client.Close() }, nil
}
