// Package main Med-Link session shell
//
// @title           Med-Link session shell
// @version         1.0
// @description     Local shell over the Med-Link session client: sign-in flows, gated screens and appointment actions.

// @host      127.0.0.1:8088
// @BasePath  /
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/medlink/session-client/internal/api"
	"github.com/medlink/session-client/internal/api/handler"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
	"github.com/medlink/session-client/internal/core/service"
	"github.com/medlink/session-client/internal/infrastructure/apiclient"
	mongodb "github.com/medlink/session-client/internal/infrastructure/db/mongo"
	redisdb "github.com/medlink/session-client/internal/infrastructure/db/redis"
	"github.com/medlink/session-client/internal/infrastructure/sessionstore"
	"github.com/medlink/session-client/internal/pkg/config"
	"github.com/medlink/session-client/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "medlink-shell",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("shell stopped")
	}
}

// backend is the session store chosen by SESSION_BACKEND plus what the
// shell needs to probe and close it.
type backend struct {
	store  ports.SessionStore
	guard  ports.SubmissionGuard
	checks map[string]handler.Check
	close  func(context.Context)
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{
		guard:  sessionstore.NewLocalGuard(),
		checks: map[string]handler.Check{},
		close:  func(context.Context) {},
	}

	switch cfg.Session.Backend {
	case config.BackendMemory:
		b.store = sessionstore.NewMemoryStore()

	case config.BackendFile:
		if cfg.Session.EncryptionKey == "" {
			log.Warn().Str("file", cfg.Session.File).Msg("SESSION_ENCRYPTION_KEY not set, session file is stored in plain text")
		}
		b.store = sessionstore.NewFileStore(cfg.Session.File, cfg.Session.EncryptionKey, logger.For("sessionstore"))

	case config.BackendRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		b.store = redisdb.NewSessionStore(rdb, cfg.Session.DeviceID)
		b.guard = redisdb.NewSubmissionGuard(rdb, cfg.Session.DeviceID, cfg.Session.SubmissionTTL)
		b.checks["redis"] = handler.RedisCheck(rdb)
		b.close = func(context.Context) { _ = rdb.Close() }

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		store := mongodb.NewSessionStore(db, cfg.Session.DeviceID)
		if err := store.EnsureIndexes(ctx, cfg.Session.IdleTTL); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		b.store = store
		b.checks["mongodb"] = handler.MongoCheck(db)
		b.close = func(ctx context.Context) { _ = client.Disconnect(ctx) }
	}

	log.Info().Str("backend", cfg.Session.Backend).Msg("session store ready")
	return b, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer b.close(context.WithoutCancel(ctx))

	client, err := apiclient.New(apiclient.Config{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout,
		RatePerSecond:      cfg.API.RatePerSecond,
		RetryMaxElapsed:    cfg.API.RetryMaxElapsed,
		BreakerMaxFailures: cfg.API.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.API.BreakerOpenTimeout,
	}, sessionstore.NewTokenSource(b.store), logger.For("apiclient"))
	if err != nil {
		return err
	}
	b.checks["backend"] = client.Ping

	manager := service.NewSessionManager(b.store, logger.For("session"))
	auth := service.NewAuthFlow(client, b.store, manager, b.guard, logger.For("auth"))
	appts := service.NewAppointmentFlow(client, client, manager, auth, b.guard, cfg.Session.RosterWorkers, logger.For("appointments"))
	screens := service.NewScreens(client, appts, manager, auth)

	manager.Subscribe(func(s domain.SessionState) {
		log.Debug().
			Str("phase", string(s.Phase)).
			Bool("authenticated", s.IsAuthenticated).
			Str("role", string(s.Role())).
			Msg("session changed")
	})

	// Screens render the loading shell until this finishes.
	go manager.Hydrate(ctx)

	e := api.NewRouter(api.Deps{
		Session:      manager,
		Auth:         auth,
		Appointments: appts,
		Screens:      screens,
		Checks:       b.checks,
		Log:          logger.For("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ShellAddr).Msg("shell listening")
		if err := e.Start(cfg.ShellAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
