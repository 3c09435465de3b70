// @title        Grievance Portal API
// @version      1.0
// @description  Session, navigation and live-stream backend of the civic grievance portal.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicpulse/grievance-portal/internal/api"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
	"github.com/civicpulse/grievance-portal/internal/core/service"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/cache"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/config"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/db/memory"
	mongodb "github.com/civicpulse/grievance-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/civicpulse/grievance-portal/internal/infrastructure/db/redis"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/queue"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/ws"
	"github.com/civicpulse/grievance-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "grievance-portal"})
		log.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "grievance-portal",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("portal stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	accounts, mdb, closeAccounts, err := openAccounts(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAccounts()

	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorkers()

	// Other instances evict their cached copy when a session changes here.
	invalidations := redisdb.NewSessionInvalidations(rdb, uuid.NewString())
	sessions := cache.NewSessionCache(redisdb.NewSessionStore(rdb, cfg.Session.TTL), cfg.Session.CacheSize, cfg.Session.CacheTTL).
		WithBroadcaster(invalidations, logger.Component("session-cache"))
	go func() {
		if err := invalidations.Listen(workerCtx, sessions.Evict); err != nil {
			log.Error().Err(err).Msg("session invalidation listener stopped")
		}
	}()
	flags := redisdb.NewWelcomeFlags(rdb, 0)

	// --- Live delivery ---
	hub := ws.NewHub(logger.Component("ws"))
	defer hub.Close()

	dispatcher := queue.NewDispatcher(cfg.Toasts.Workers, hub, logger.Component("toasts"))
	dispatcher.Start(workerCtx)

	// --- Services ---
	sessionService := service.NewSessionService(accounts, sessions, dispatcher, service.SessionOptions{
		Latency:         cfg.Session.MockLatency,
		VerifyPasswords: cfg.Session.VerifyPasswords,
	}, logger.Component("session"))
	tokenService := service.NewTokenService(cfg.Session.JWTSecret, cfg.Session.TTL)

	timings := service.SplashTimings{Steps: cfg.Timers.SplashSteps, Settle: cfg.Timers.SplashSettle}
	welcomeService := service.NewWelcomeService(flags, timings, logger.Component("welcome"))

	assistantService, err := service.NewAssistantService()
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Sessions:       sessionService,
		Tokens:         tokenService,
		Welcome:        welcomeService,
		Assistant:      assistantService,
		Hub:            hub,
		SplashSequence: welcomeService.Sequence(),
		TypingInterval: cfg.Timers.TypingInterval,
		CookieMaxAge:   cfg.Session.TTL,
		SecureCookie:   cfg.Session.SecureCookie,
		Redis:          rdb,
		Mongo:          mdb,
		Log:            logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("accounts", cfg.Accounts.Backend).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by the HTTP server.
	hub.Close()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// openAccounts selects the account directory. The memory directory is
// seeded with the demo accounts; the Mongo one is seeded when empty.
func openAccounts(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AccountRepository, *mongo.Database, func(), error) {
	if cfg.Accounts.Backend != config.AccountsMongo {
		return memory.NewAccountRepository(domain.DemoAccounts()), nil, func() {}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}

	repo := mongodb.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	seeded, err := repo.Seed(ctx, domain.DemoAccounts())
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	if seeded > 0 {
		log.Info().Int("accounts", seeded).Msg("seeded account directory")
	}
	return repo, db, closeFn, nil
}

