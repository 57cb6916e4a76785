package database

import (
	"context"
	"testing"

	"nourish/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:                 config.DriverPostgres,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	cfg.DBDriver = config.DriverSQLite
	require.NoError(t, configurePool(db, cfg))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnectSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBName: ":memory:", DBReadHost: "replica"}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		DB, ReadDB = nil, nil
	})

	assert.Same(t, db, DB)
	assert.Nil(t, ReadDB, "replicas are only used with postgres")
	assert.Same(t, DB, GetReadDB())
	assert.NoError(t, Ping(context.Background()))
	assert.True(t, db.Migrator().HasTable("posts"))
}

func TestPingWithoutConnection(t *testing.T) {
	saved := DB
	DB = nil
	t.Cleanup(func() { DB = saved })
	assert.Error(t, Ping(context.Background()))
}

func TestPostgresDSNDefaultsSSLMode(t *testing.T) {
	dsn := postgresDSN("h", "5432", "u", "p", "db", "")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "host=h")
}
