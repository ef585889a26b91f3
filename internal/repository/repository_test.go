package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/vmeirelles/taskboard/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, users *UserRepo, username, role string) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), username, "senha123", role, 4)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return id
}
