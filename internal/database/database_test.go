package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"microblog/internal/config"
	"microblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN_DefaultsSSLMode(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "microblog",
	}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=microblog sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	db, err := Connect(&config.Config{DBDriver: config.DBDriverSQLite, DBName: "file::memory:"})
	require.NoError(t, err)

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}

	u := models.User{Username: "alice"}
	require.NoError(t, db.Create(&u).Error)
	dup := models.User{Username: "alice"}
	assert.Error(t, db.Create(&dup).Error, "username must be unique")

	require.NoError(t, db.Create(&models.Follow{FollowerID: u.ID, FollowedID: u.ID}).Error)
	assert.Error(t, db.Create(&models.Follow{FollowerID: u.ID, FollowedID: u.ID}).Error, "follow edge must be unique")
}

func TestCustomGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(nil, logger.Warn)
	quiet := l.LogMode(logger.Silent).(*CustomGormLogger)

	assert.Equal(t, logger.Silent, quiet.Config.LogLevel)
	assert.Equal(t, logger.Warn, l.Config.LogLevel)

	// Silent never touches the underlying slog logger, so a nil logger is safe.
	quiet.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	quiet.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, gorm.ErrRecordNotFound)
}
