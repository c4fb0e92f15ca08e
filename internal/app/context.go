package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/cache"
	"github.com/oggyb/swipematch/internal/config"
)

// AppContext holds shared dependencies (Config, DB, Redis, Logger).
// Services are built from it; none of them keeps a per-request actor.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext. A nil config falls back to the environment.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	if cfg == nil {
		cfg = config.New()
	}
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}
