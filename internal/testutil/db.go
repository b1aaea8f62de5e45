// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"spiceshop-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

// CreateUser inserts an account with a placeholder password hash
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.Role, approved bool) *model.User {
	t.Helper()
	u := model.NewUser("", email, "x", role, email)
	u.IsApproved = approved
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateProduct inserts a product owned by merchantID
func CreateProduct(t *testing.T, db *gorm.DB, merchantID uint, name, category string, price int64) *model.Product {
	t.Helper()
	p := &model.Product{
		MerchantID:    merchantID,
		Name:          name,
		Description:   name + " description",
		Price:         decimal.NewFromInt(price),
		StockQuantity: 100,
		QuantityUnit:  model.DefaultQuantityUnit,
		Category:      category,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
