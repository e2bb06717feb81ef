// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"docvault/internal/config"
	"docvault/internal/db"
	"docvault/internal/model"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		// a named shared-cache database keeps every pooled connection on the same data
		DSN:          fmt.Sprintf("file:docvault_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1)),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	nop := zerolog.Nop()

	gdb, err := db.Open(context.Background(), cfg, &nop, false)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb, false); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// CreateUser inserts a user row directly, bypassing the service layer.
func CreateUser(t testing.TB, gdb *gorm.DB, username string, active, admin bool) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-hash",
		IsActive: active,
		IsAdmin:  admin,
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}
