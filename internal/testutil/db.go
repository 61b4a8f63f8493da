// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewDB opens an in-memory SQLite database with every panel table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A second pooled connection would see a different in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db, true); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
