package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/vmeirelles/taskboard/internal/utils"
)

func TestUserCreateHashesPasswordAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	id := createTestUser(t, users, "vitoria", "user")
	u, err := users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u.PasswordHash == "senha123" {
		t.Fatalf("password stored in plaintext")
	}
	if !utils.VerifyPassword(u.PasswordHash, "senha123") {
		t.Fatalf("stored hash does not verify")
	}
	if utils.VerifyPassword(u.PasswordHash, "errada") {
		t.Fatalf("wrong password verified")
	}

	if _, err := users.Create(ctx, "vitoria", "outra", "user", 4); err != ErrUsernameExists {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestTokenRotationInvalidatesPreviousSession(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	id := createTestUser(t, users, "bruno", "user")
	if err := users.UpdateToken(ctx, id, "token-one"); err != nil {
		t.Fatalf("store first token: %v", err)
	}
	if _, err := users.GetByToken(ctx, "token-one"); err != nil {
		t.Fatalf("first token should resolve: %v", err)
	}

	if err := users.UpdateToken(ctx, id, "token-two"); err != nil {
		t.Fatalf("rotate token: %v", err)
	}
	if _, err := users.GetByToken(ctx, "token-one"); err != sql.ErrNoRows {
		t.Fatalf("rotated token should stop resolving, got %v", err)
	}
	u, err := users.GetByToken(ctx, "token-two")
	if err != nil || u.ID != id {
		t.Fatalf("current token should resolve to user %d, got %v (%v)", id, u.ID, err)
	}
}

func TestAdminExists(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	exists, err := users.AdminExists(ctx)
	if err != nil || exists {
		t.Fatalf("fresh database should have no admin (exists=%v err=%v)", exists, err)
	}
	createTestUser(t, users, "chefe", "admin")
	exists, err = users.AdminExists(ctx)
	if err != nil || !exists {
		t.Fatalf("expected admin to exist (exists=%v err=%v)", exists, err)
	}
}
