package repository

import (
	"log"
	"os"
	"testing"

	"blogicum/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")

	var err error
	testDB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Repository tests skipped: in-memory database unavailable: %v", err)
		os.Exit(0)
	}

	if err := database.Migrate(testDB); err != nil {
		log.Printf("Repository tests skipped: migration failed: %v", err)
		os.Exit(0)
	}

	os.Exit(m.Run())
}

func resetTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"comments", "posts", "categories", "locations", "users"} {
		if err := testDB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
}
