package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"agriconnect/config"
	"agriconnect/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "market.db"),
	}
	db, err := config.InitDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, userType models.UserType) models.User {
	t.Helper()
	u := models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "not-a-real-hash",
		UserType:     userType,
		FullName:     "Test " + name,
		Phone:        "555-0100",
		Address:      "Green Valley",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createProduct(t *testing.T, db *gorm.DB, farmer models.User, name string, category models.Category, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		FarmerID:      farmer.ID,
		Name:          name,
		Category:      category,
		Price:         decimal.RequireFromString(price),
		Unit:          "kg",
		StockQuantity: stock,
		Description:   fmt.Sprintf("Fresh %s from the farm", name),
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.StockQuantity
}
