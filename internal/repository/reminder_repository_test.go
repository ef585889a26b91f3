package repository

import (
	"context"
	"database/sql"
	"testing"
)

func TestReminderLifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	reminders := NewReminderRepo(db)
	ctx := context.Background()

	uid := createTestUser(t, users, "carla", "user")

	created, err := reminders.Create(ctx, uid, "pagar boleto")
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	if created.ID == 0 || created.Done || created.Text != "pagar boleto" {
		t.Fatalf("unexpected created reminder: %+v", created)
	}

	done := true
	updated, err := reminders.Update(ctx, created.ID, nil, &done)
	if err != nil {
		t.Fatalf("update reminder: %v", err)
	}
	if !updated.Done {
		t.Fatalf("done flag should be set")
	}

	newText := "pagar boleto amanhã"
	updated, err = reminders.Update(ctx, created.ID, &newText, nil)
	if err != nil || updated.Text != newText {
		t.Fatalf("text update failed: %+v (%v)", updated, err)
	}
	if !updated.Done {
		t.Fatalf("partial update must not reset done")
	}

	n, err := reminders.Delete(ctx, created.ID)
	if err != nil || n != 1 {
		t.Fatalf("delete reminder: n=%d err=%v", n, err)
	}
	if _, err := reminders.GetByID(ctx, created.ID); err != sql.ErrNoRows {
		t.Fatalf("deleted reminder should be gone, got %v", err)
	}
}

func TestReminderCascadeSurvivesPoolChurn(t *testing.T) {
	db := newTestDB(t)
	// Force every statement onto a freshly opened connection; the
	// cascade only works if the foreign_keys pragma reaches all of
	// them, not just the first.
	db.SetMaxIdleConns(0)

	users := NewUserRepo(db)
	reminders := NewReminderRepo(db)
	ctx := context.Background()

	uid := createTestUser(t, users, "efemero", "user")
	created, err := reminders.Create(ctx, uid, "some um dia")
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	if _, err := users.Delete(ctx, uid); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := reminders.GetByID(ctx, created.ID); err != sql.ErrNoRows {
		t.Fatalf("reminder should cascade away with its user, got %v", err)
	}
	rows, err := reminders.ListByUser(ctx, uid)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no orphan reminders, got %d (%v)", len(rows), err)
	}
}

func TestReminderListIsPerUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	reminders := NewReminderRepo(db)
	ctx := context.Background()

	carla := createTestUser(t, users, "carla", "user")
	dora := createTestUser(t, users, "dora", "user")

	if _, err := reminders.Create(ctx, carla, "da carla"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := reminders.Create(ctx, dora, "da dora"); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := reminders.ListByUser(ctx, carla)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Text != "da carla" {
		t.Fatalf("expected only carla's reminder, got %v", mine)
	}
}
