package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"spiceshop-service/pkg/config"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Configure(db, &config.DBConfig{MaxIdleConns: 1, MaxOpenConns: 1, ConnMaxLifetime: time.Hour}))
	return db
}

func TestMigrateModels(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateModels(db, &widget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))
}

func TestMigrateModelsWithoutDB(t *testing.T) {
	assert.Error(t, MigrateModels(nil, &widget{}))
}

func TestPing(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, Ping(context.Background(), db, time.Second))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.Error(t, Ping(context.Background(), db, time.Second))
}

func TestMonitorTracksAvailability(t *testing.T) {
	db := openTestDB(t)
	var seen []bool
	m := NewMonitor(db, time.Minute, time.Second, zap.NewNop(), func(up bool) { seen = append(seen, up) })

	assert.False(t, m.Up())
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Up())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Up())
	assert.Equal(t, []bool{true, false}, seen)
}

func TestMonitorPreparesBeforeReportingUp(t *testing.T) {
	db := openTestDB(t)
	m := NewMonitor(db, time.Minute, time.Second, zap.NewNop(), nil)

	calls := 0
	m.OnFirstConnect(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("migration failed")
		}
		return MigrateModels(db.WithContext(ctx), &widget{})
	})

	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Up())
	assert.False(t, db.Migrator().HasTable(&widget{}))

	assert.True(t, m.Check(context.Background()))
	assert.True(t, db.Migrator().HasTable(&widget{}))

	assert.True(t, m.Check(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestMonitorWaitsForUnreachableStore(t *testing.T) {
	db := openTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	prepared := false
	m := NewMonitor(db, time.Minute, time.Second, zap.NewNop(), nil)
	m.OnFirstConnect(func(context.Context) error {
		prepared = true
		return nil
	})

	assert.False(t, m.Check(context.Background()))
	assert.False(t, prepared)
}
