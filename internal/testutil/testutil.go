// Package testutil builds throwaway SQLite databases and Redis servers for
// package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/pkg/database"
)

// NewDB opens a private in-memory SQLite database with every table
// migrated. A single connection keeps the shared-cache database alive and
// serializes access.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewFileDB opens a migrated SQLite database file in a temp dir with up to
// conns connections. Write transactions take the lock up front and wait on
// each other through the busy timeout.
func NewFileDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "graph.db")
	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     "file:" + path + "?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate",
		MaxOpenConns: conns,
		MaxIdleConns: conns,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// SeedUser inserts a user with zero counters.
func SeedUser(t *testing.T, db *gorm.DB, id string, account domain.AccountType) {
	t.Helper()

	err := db.WithContext(context.Background()).Create(&domain.UserModel{
		ID:          id,
		Username:    "user_" + id,
		AccountType: string(account),
	}).Error
	require.NoError(t, err)
}

// Counts reads a user's stored counters.
func Counts(t *testing.T, db *gorm.DB, id string) (followers, following int64) {
	t.Helper()

	var m domain.UserModel
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m.FollowersCount, m.FollowingCount
}
