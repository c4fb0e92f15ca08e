package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	JWT struct {
		Secret string
		TTL    time.Duration
	}

	Limits struct {
		PhotosPerUser   int
		Candidates      int
		Matches         int
		LikedYouPerPage int
		MaxPageSize     int
		StatsCacheTTL   time.Duration
		LikeCountTTL    time.Duration
	}
}

// DevJWTSecret signs tokens when APP_ENV=development and JWT_SECRET is unset.
const DevJWTSecret = "swipematch-dev-only"

// ErrMissingJWTSecret is returned by Validate outside development when no
// signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set outside development")

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "grpc_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	switch cfg.DB.Driver {
	case "postgres":
		cfg.DB.DSN = os.Getenv("POSTGRES_DSN")
	default:
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "swipematch")

		if cfg.DB.Driver == "postgres" {
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.DSN = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port,
			)
		} else {
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Auth
	cfg.JWT.Secret = getEnvDefault("JWT_SECRET", "")
	if cfg.JWT.Secret == "" && cfg.App.ENV == "development" {
		cfg.JWT.Secret = DevJWTSecret
	}
	cfg.JWT.TTL = getDurationDefault("JWT_TTL", 24*time.Hour)

	// Limits
	cfg.Limits.PhotosPerUser = getIntDefault("PHOTO_LIMIT", 5)
	cfg.Limits.Candidates = getIntDefault("CANDIDATE_LIMIT", 25)
	cfg.Limits.Matches = getIntDefault("MATCH_LIMIT", 50)
	cfg.Limits.LikedYouPerPage = getIntDefault("LIKED_YOU_PAGE_SIZE", 20)
	cfg.Limits.MaxPageSize = getIntDefault("MAX_PAGE_SIZE", 100)
	cfg.Limits.StatsCacheTTL = getDurationDefault("STATS_CACHE_TTL", time.Minute)
	cfg.Limits.LikeCountTTL = getDurationDefault("LIKE_COUNT_TTL", time.Hour)

	return cfg
}

// Validate reports settings the server must not start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if c.App.ENV != "development" && c.JWT.Secret == DevJWTSecret {
		return fmt.Errorf("JWT_SECRET uses the development secret in %q", c.App.ENV)
	}
	return nil
}

// PageSize resolves a caller-supplied limit: def when limit <= 0, and never
// more than Limits.MaxPageSize.
func (c *Config) PageSize(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if ceiling := c.Limits.MaxPageSize; ceiling > 0 && limit > ceiling {
		limit = ceiling
	}
	return limit
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getIntDefault(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil && n > 0 {
		return n
	}
	return def
}

func getDurationDefault(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil && d > 0 {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
