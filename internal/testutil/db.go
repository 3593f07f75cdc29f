// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model migrated
// and foreign keys enforced.
// The pool is pinned to one connection so the in-memory database survives for
// the life of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.MigrateModels(db, models.All()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user row and returns its id.
func CreateUser(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	u := models.User{
		ID:       uuid.New(),
		Email:    email,
		Name:     email,
		Password: "x",
		Role:     "user",
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u.ID
}

// NewUser inserts a user with a unique e-mail and returns its id.
func NewUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	return CreateUser(t, db, uuid.NewString()+"@example.com")
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
