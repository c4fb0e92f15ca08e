package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_TTL", "")

	cfg := New()

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/swipematch")
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5, cfg.Limits.PhotosPerUser)
	assert.Equal(t, 25, cfg.Limits.Candidates)
}

func TestNew_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("DB_HOST", "db")

	cfg := New()

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Contains(t, cfg.DB.DSN, "host=db")
	assert.Contains(t, cfg.DB.DSN, "port=5432")
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("PHOTO_LIMIT", "3")
	t.Setenv("STATS_CACHE_TTL", "30s")
	t.Setenv("CANDIDATE_LIMIT", "not-a-number")

	cfg := New()

	assert.Equal(t, 3, cfg.Limits.PhotosPerUser)
	assert.Equal(t, 30*time.Second, cfg.Limits.StatsCacheTTL)
	assert.Equal(t, 25, cfg.Limits.Candidates)
}

func TestNew_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	t.Setenv("APP_ENV", "")
	cfg := New()
	assert.Equal(t, "production", cfg.App.ENV)
	assert.Empty(t, cfg.JWT.Secret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	t.Setenv("APP_ENV", "development")
	cfg = New()
	assert.Equal(t, DevJWTSecret, cfg.JWT.Secret)
	assert.NoError(t, cfg.Validate())

	t.Setenv("APP_ENV", "staging")
	t.Setenv("JWT_SECRET", DevJWTSecret)
	assert.Error(t, New().Validate())

	t.Setenv("JWT_SECRET", "a-real-secret")
	assert.NoError(t, New().Validate())
}

func TestPageSize(t *testing.T) {
	t.Setenv("MAX_PAGE_SIZE", "")
	cfg := New()
	assert.Equal(t, 100, cfg.Limits.MaxPageSize)

	assert.Equal(t, 25, cfg.PageSize(0, 25))
	assert.Equal(t, 25, cfg.PageSize(-4, 25))
	assert.Equal(t, 7, cfg.PageSize(7, 25))
	assert.Equal(t, 100, cfg.PageSize(1_000_000, 25))

	cfg.Limits.MaxPageSize = 10
	assert.Equal(t, 10, cfg.PageSize(0, 25), "defaults are capped too")
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}
