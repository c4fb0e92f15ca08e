// Package testutil builds isolated stores for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/cache"
	"github.com/oggyb/swipematch/internal/config"
	"github.com/oggyb/swipematch/internal/db"
	"github.com/oggyb/swipematch/internal/logger"
)

// NewDB opens a migrated in-memory SQLite database private to t.
//
// The pool is capped at one connection, so concurrent callers queue on it the
// way they would queue on row locks in MySQL.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewCache starts a miniredis instance and returns a cache bound to it.
func NewCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	return cache.NewRedisCache(cfg), mr
}

// NewAppContext wires a fresh DB, a fresh Redis and a silent logger.
func NewAppContext(t *testing.T) *app.AppContext {
	t.Helper()

	redisCache, _ := NewCache(t)
	cfg := config.New()
	cfg.JWT.Secret = "test-secret"
	return app.New(cfg, NewDB(t), redisCache, logger.Nop())
}

// Birthdate is a date-only helper.
func Birthdate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateUser inserts a user with sensible defaults; fields in u win.
func CreateUser(t *testing.T, database *gorm.DB, u db.User) *db.User {
	t.Helper()

	if u.FirstName == "" {
		u.FirstName = "User"
	}
	if u.LastName == "" {
		u.LastName = fmt.Sprintf("N%d", u.ID)
	}
	if u.Email == "" {
		u.Email = fmt.Sprintf("user%d-%d@test.com", u.ID, time.Now().UnixNano())
	}
	if u.MobileNumber == "" {
		u.MobileNumber = "0917000000"
	}
	if u.Birthdate.IsZero() {
		u.Birthdate = Birthdate(1995, time.June, 15)
	}
	if u.Gender == "" {
		u.Gender = "female"
	}
	if u.SexualOrientation == "" {
		u.SexualOrientation = "straight"
	}
	if u.GenderInterest == "" {
		u.GenderInterest = "both"
	}
	if u.Bio == "" {
		u.Bio = "hello"
	}
	if u.PasswordHash == "" {
		u.PasswordHash = "x"
	}
	if u.Role == "" {
		u.Role = "user"
	}
	require.NoError(t, database.Create(&u).Error)
	return &u
}
