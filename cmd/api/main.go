package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindhaven/counseling-system/internal/api"
	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
	"github.com/mindhaven/counseling-system/internal/core/service"
	"github.com/mindhaven/counseling-system/internal/infrastructure/bus"
	"github.com/mindhaven/counseling-system/internal/infrastructure/config"
	mongodb "github.com/mindhaven/counseling-system/internal/infrastructure/db/mongo"
	redisdb "github.com/mindhaven/counseling-system/internal/infrastructure/db/redis"
	"github.com/mindhaven/counseling-system/internal/realtime"
	"github.com/mindhaven/counseling-system/internal/session"
	"github.com/mindhaven/counseling-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	eventBus := bus.NewRedis(rdb, log)

	// --- Core wiring ---
	userRepo := mongodb.NewUserRepository(db)
	tokenStore := redisdb.NewTokenStore(rdb, eventBus)
	sessionCache := redisdb.NewSessionCache(rdb)

	authService := service.NewAuthService(userRepo, tokenStore, cfg.JWTSecret, cfg.TokenTTL)
	sessionService := service.NewSessionService(userRepo, sessionCache, cfg.CacheTTL, log)

	notifCenter := realtime.NewNotificationCenter()
	manager := session.NewManager(tokenStore, sessionService, eventBus, notifCenter, log)

	// session_revoked drops the cached identity so a logout in one
	// instance is visible everywhere on the next lookup
	unsubRevoked := eventBus.Subscribe(ports.EventSessionRevoked, func(e ports.Event) {
		if err := sessionService.Invalidate(context.Background(), domain.SessionTag(e.UserID)); err != nil {
			log.Warn().Err(err).Str("user_id", e.UserID).Msg("session invalidation failed")
		}
	})
	defer unsubRevoked()

	e := api.NewRouter(api.Deps{
		Mongo:     db,
		Redis:     rdb,
		Auth:      authService,
		Sessions:  sessionService,
		Manager:   manager,
		Tokens:    tokenStore,
		Notifs:    notifCenter,
		Policies:  domain.DefaultPolicyTable(),
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("session gateway listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
