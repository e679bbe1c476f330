package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/booking-system/internal/api"
	"github.com/clinicdesk/booking-system/internal/api/handler"
	"github.com/clinicdesk/booking-system/internal/core/ports"
	"github.com/clinicdesk/booking-system/internal/core/service"
	"github.com/clinicdesk/booking-system/internal/infrastructure/session"
	"github.com/clinicdesk/booking-system/internal/infrastructure/store/memory"
	mongostore "github.com/clinicdesk/booking-system/internal/infrastructure/store/mongo"
	"github.com/clinicdesk/booking-system/internal/infrastructure/store/postgres"
	"github.com/clinicdesk/booking-system/internal/pkg/config"
	"github.com/clinicdesk/booking-system/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Persistence ---
	store, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer cleanup()

	// --- Sessions ---
	sessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.SessionDriver).Msg("failed to open session store")
	}

	// --- Seed the calendar and the admin account ---
	if err := service.NewSeeder(store, log).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	// --- Services ---
	bookingService := service.NewBookingService(store, log)
	authService := service.NewAuthService(store.Users(), sessions, cfg.SessionSecret, cfg.SessionTTL, log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		BookingService: bookingService,
		AuthService:    authService,
		Sessions:       sessions,
		SessionSecret:  cfg.SessionSecret,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.Production(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		HealthChecks: map[string]handler.Pinger{
			"store":    store,
			"sessions": sessions,
		},
		Logger: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore builds the persistence backend selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), func() {}, nil

	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return store, cleanup, nil

	case "postgres":
		store, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("connected to postgres")
		return store, store.Close, nil

	default:
		return nil, nil, errors.New("unknown store driver: " + cfg.StoreDriver)
	}
}

// openSessions builds the session backend selected by SESSION_DRIVER.
func openSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, error) {
	switch cfg.SessionDriver {
	case "memory":
		log.Warn().Msg("using in-memory sessions; logins do not survive restarts")
		return session.NewMemoryStore(), nil

	case "redis":
		client, err := session.Connect(ctx, session.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
		return session.NewRedisStore(client), nil

	default:
		return nil, errors.New("unknown session driver: " + cfg.SessionDriver)
	}
}
