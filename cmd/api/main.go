package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/forkful/backend/config"
	"github.com/pageza/forkful/backend/internal/api"
	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/server"
	"github.com/pageza/forkful/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.Info().Str("env", string(cfg.Env)).Msg("starting forkful api")

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.NewRedisClient(cfg)
		if err != nil {
			logging.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store service.ObjectStore
	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			logging.Warn().Err(err).Msg("object storage unavailable, image uploads disabled")
		} else {
			store = s3cfg
		}
	}

	services := api.NewServices(db, rdb, store, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.RateLimitPerHour)
	srv := server.New(cfg, services)

	if err := srv.Run(ctx); err != nil {
		logging.Fatal().Err(err).Msg("server error")
	}
	logging.Info().Msg("server stopped")
}
