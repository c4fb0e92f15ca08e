package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/cache"
	"github.com/oggyb/swipematch/internal/config"
	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/logger"
	"github.com/oggyb/swipematch/internal/seed"
	"github.com/oggyb/swipematch/internal/server"
	"github.com/oggyb/swipematch/internal/service/gateway"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	appCtx := app.New(cfg, database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := seed.Reseed(ctx, appCtx); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	registrars := []server.Registrar{
		gateway.NewRegistrar(appCtx),
	}

	if err := server.StartGRPCServer(ctx, cfg, log, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
		os.Exit(1)
	}
}
