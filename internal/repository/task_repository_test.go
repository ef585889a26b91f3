package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/vmeirelles/taskboard/internal/model"
)

func createTestTask(t *testing.T, tasks *TaskRepo, task model.Task) model.Task {
	t.Helper()
	if task.Status == "" {
		task.Status = model.StatusBacklog
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if err := tasks.Create(context.Background(), &task); err != nil {
		t.Fatalf("create task %q: %v", task.Title, err)
	}
	return task
}

func TestCreateAssignsSequentialCodes(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepo(db)

	codeShape := regexp.MustCompile(`^TASK-\d{3,}$`)
	first := createTestTask(t, tasks, model.Task{Title: "primeira"})
	second := createTestTask(t, tasks, model.Task{Title: "segunda"})

	if !codeShape.MatchString(first.Code) || !codeShape.MatchString(second.Code) {
		t.Fatalf("unexpected codes %q, %q", first.Code, second.Code)
	}
	if first.Code == second.Code {
		t.Fatalf("codes must be unique, both are %q", first.Code)
	}
	if first.Code != "TASK-001" || second.Code != "TASK-002" {
		t.Fatalf("expected TASK-001/TASK-002, got %q/%q", first.Code, second.Code)
	}
}

func TestCodesNotReusedAfterDeletion(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepo(db)
	ctx := context.Background()

	first := createTestTask(t, tasks, model.Task{Title: "efêmera"})
	if first.Code != "TASK-001" {
		t.Fatalf("expected TASK-001, got %q", first.Code)
	}
	if _, err := tasks.DeleteWithChildren(ctx, first.ID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The row id sequence never rewinds, so neither does the code.
	second := createTestTask(t, tasks, model.Task{Title: "seguinte"})
	if second.Code == first.Code {
		t.Fatalf("code %q reused after deletion", first.Code)
	}
	if second.Code != "TASK-002" {
		t.Fatalf("expected TASK-002, got %q", second.Code)
	}
}

func TestListScopesNonAdminsToOwnAndUnowned(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	tasks := NewTaskRepo(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice", "user")
	bob := createTestUser(t, users, "bob", "user")

	createTestTask(t, tasks, model.Task{Title: "da alice", OwnerID: &alice})
	createTestTask(t, tasks, model.Task{Title: "do bob", OwnerID: &bob})
	createTestTask(t, tasks, model.Task{Title: "sem dono"})

	visible, err := tasks.List(ctx, ListFilter{UserID: alice})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("alice should see 2 tasks, got %d", len(visible))
	}
	for _, task := range visible {
		if task.OwnerID != nil && *task.OwnerID == bob {
			t.Fatalf("alice can see bob's task %q", task.Title)
		}
	}

	all, err := tasks.List(ctx, ListFilter{UserID: alice, Admin: true})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin should see 3 tasks, got %d", len(all))
	}

	unowned, err := tasks.List(ctx, ListFilter{Admin: true, OwnerNone: true})
	if err != nil {
		t.Fatalf("owner=none list: %v", err)
	}
	if len(unowned) != 1 || unowned[0].Title != "sem dono" {
		t.Fatalf("owner=none should return only the unowned task, got %v", unowned)
	}
}

func TestUpdateSetsAndClearsCompletedAt(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepo(db)
	ctx := context.Background()

	task := createTestTask(t, tasks, model.Task{Title: "fluxo"})

	done := model.StatusDone
	if _, err := tasks.Update(ctx, task.ID, TaskUpdate{Status: &done, SetCompletedAt: true}); err != nil {
		t.Fatalf("move to done: %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatalf("completed_at should be set on done")
	}

	backlog := model.StatusBacklog
	reason := "voltou para replanejar"
	if _, err := tasks.Update(ctx, task.ID, TaskUpdate{
		Status: &backlog, ClearCompletedAt: true, RegressionReason: &reason,
	}); err != nil {
		t.Fatalf("regress to backlog: %v", err)
	}
	got, err = tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get after regression: %v", err)
	}
	if got.CompletedAt != nil {
		t.Fatalf("completed_at should be cleared on backlog")
	}
	if got.RegressionReason == nil || *got.RegressionReason != reason {
		t.Fatalf("regression reason not recorded: %v", got.RegressionReason)
	}
	if got.RegressionReasonAt == nil {
		t.Fatalf("regression timestamp not recorded")
	}
}

func TestDeleteArchivesOnlyDoneCards(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepo(db)
	archives := NewArchiveRepo(db)
	ctx := context.Background()

	parent := createTestTask(t, tasks, model.Task{Title: "pai", Status: model.StatusBacklog})
	childDone := createTestTask(t, tasks, model.Task{Title: "filho pronto", ParentID: &parent.ID})
	createTestTask(t, tasks, model.Task{Title: "filho pendente", ParentID: &parent.ID})

	done := model.StatusDone
	if _, err := tasks.Update(ctx, childDone.ID, TaskUpdate{Status: &done, SetCompletedAt: true}); err != nil {
		t.Fatalf("finish child: %v", err)
	}

	deleted, err := tasks.DeleteWithChildren(ctx, parent.ID, "alice")
	if err != nil {
		t.Fatalf("delete with children: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 rows deleted, got %d", deleted)
	}

	entries, err := archives.Search(ctx, ArchiveFilter{Admin: true})
	if err != nil {
		t.Fatalf("search archive: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("only the done card should be archived, got %d entries", len(entries))
	}
	e := entries[0]
	if e.Title != "filho pronto" {
		t.Fatalf("unexpected archived card %q", e.Title)
	}
	if e.DeletedBy == nil || *e.DeletedBy != "alice" {
		t.Fatalf("deleted_by not recorded: %v", e.DeletedBy)
	}
	if e.OriginalStatus == nil || *e.OriginalStatus != model.StatusDone {
		t.Fatalf("original status not recorded: %v", e.OriginalStatus)
	}
}

func TestRestoreArchivedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepo(db)
	archives := NewArchiveRepo(db)
	ctx := context.Background()

	task := createTestTask(t, tasks, model.Task{Title: "liberar versão", Status: model.StatusDone})
	done := model.StatusDone
	if _, err := tasks.Update(ctx, task.ID, TaskUpdate{Status: &done, SetCompletedAt: true}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := tasks.DeleteWithChildren(ctx, task.ID, "chefe"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries, err := archives.Search(ctx, ArchiveFilter{Admin: true})
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one archive entry, got %d (%v)", len(entries), err)
	}
	rec := entries[0]

	restored, err := tasks.RestoreArchived(ctx, rec, nil, "chefe", "restaurada")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Status != model.StatusBacklog {
		t.Fatalf("restored card should land in backlog, got %q", restored.Status)
	}
	if restored.Code == task.Code {
		t.Fatalf("restored card should get a fresh code")
	}

	if _, err := tasks.RestoreArchived(ctx, rec, nil, "chefe", "de novo"); err != ErrConflict {
		t.Fatalf("second restore should conflict, got %v", err)
	}

	marked, err := archives.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get archive entry: %v", err)
	}
	if marked.RestoredAt == nil || marked.RestoredTaskID == nil || *marked.RestoredTaskID != restored.ID {
		t.Fatalf("archive entry not marked restored: %+v", marked)
	}

	// Hidden by default, visible with IncludeRestored.
	visible, err := archives.Search(ctx, ArchiveFilter{Admin: true})
	if err != nil || len(visible) != 0 {
		t.Fatalf("restored entries should be hidden by default, got %d (%v)", len(visible), err)
	}
	all, err := archives.Search(ctx, ArchiveFilter{Admin: true, IncludeRestored: true})
	if err != nil || len(all) != 1 {
		t.Fatalf("includeRestored should surface the entry, got %d (%v)", len(all), err)
	}
}

func TestTimerStartStop(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepo(db)
	ctx := context.Background()

	task := createTestTask(t, tasks, model.Task{Title: "cronometrada"})

	if err := tasks.StopTimer(ctx, task.ID); err != ErrConflict {
		t.Fatalf("stop without a running timer should conflict, got %v", err)
	}
	if err := tasks.StartTimer(ctx, task.ID); err != nil {
		t.Fatalf("start timer: %v", err)
	}
	if err := tasks.StartTimer(ctx, task.ID); err != ErrConflict {
		t.Fatalf("second start should conflict, got %v", err)
	}

	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil || got.TimerStartedAt == nil {
		t.Fatalf("timer_started_at should be set (err=%v)", err)
	}

	if err := tasks.StopTimer(ctx, task.ID); err != nil {
		t.Fatalf("stop timer: %v", err)
	}
	got, err = tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get after stop: %v", err)
	}
	if got.TimerStartedAt != nil {
		t.Fatalf("timer_started_at should be cleared after stop")
	}
	if got.TrackedSeconds < 0 {
		t.Fatalf("tracked_seconds must not go negative, got %d", got.TrackedSeconds)
	}
}

func TestArchiveSearchFilters(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	tasks := NewTaskRepo(db)
	archives := NewArchiveRepo(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice", "user")
	bob := createTestUser(t, users, "bob", "user")

	done := model.StatusDone
	for _, tc := range []struct {
		title string
		owner *int64
	}{
		{"Deploy API", &alice},
		{"Ajustar layout", &bob},
	} {
		task := createTestTask(t, tasks, model.Task{Title: tc.title, OwnerID: tc.owner})
		if _, err := tasks.Update(ctx, task.ID, TaskUpdate{Status: &done, SetCompletedAt: true}); err != nil {
			t.Fatalf("finish %q: %v", tc.title, err)
		}
		if _, err := tasks.DeleteWithChildren(ctx, task.ID, "admin"); err != nil {
			t.Fatalf("delete %q: %v", tc.title, err)
		}
	}

	// Substring search is case-insensitive over title/code/assignee.
	hits, err := archives.Search(ctx, ArchiveFilter{Admin: true, Search: "deploy"})
	if err != nil || len(hits) != 1 || hits[0].Title != "Deploy API" {
		t.Fatalf("search=deploy should match one entry, got %v (%v)", hits, err)
	}

	// Non-admin scope: alice owns one entry; bob's is invisible to her.
	mine, err := archives.Search(ctx, ArchiveFilter{UserID: alice, Username: "alice"})
	if err != nil {
		t.Fatalf("scoped search: %v", err)
	}
	for _, e := range mine {
		if e.OwnerID != nil && *e.OwnerID == bob {
			t.Fatalf("alice can see bob's archive entry")
		}
	}

	// Date bounds exclude everything when the window is in the past.
	none, err := archives.Search(ctx, ArchiveFilter{Admin: true, End: "2000-01-01 00:00:00"})
	if err != nil || len(none) != 0 {
		t.Fatalf("past window should match nothing, got %d (%v)", len(none), err)
	}
}
