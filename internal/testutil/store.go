// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhub/models"
	"taskhub/store"
)

// NewTestStore opens a migrated sqlite database in the test's temp dir.
// The database is closed when the test completes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "taskhub.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return store.New(db)
}

// MustUser creates a user with the given name and a derived email.
func MustUser(t *testing.T, s *store.Store, name string) *models.User {
	t.Helper()

	u := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := s.CreateUser(t.Context(), u); err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return u
}
