package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmeirelles/taskboard/internal/model"
)

// TaskRepo persists board tasks. Tags and checklists are stored as JSON
// text columns. Multi-statement operations (code assignment, archive
// then delete, restore) run inside a single transaction so a row is
// never visible without its code and no snapshot is lost between
// statements.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskCols = `t.id, COALESCE(t.code,''), t.title, t.status, t.priority,
	COALESCE(t.description,''), t.created_at, t.completed_at, COALESCE(t.assignee,''),
	t.parent_id, t.updated_at, COALESCE(t.tags,'[]'), COALESCE(t.checklist,'[]'),
	t.owner_id, t.regression_reason, t.regression_reason_at,
	COALESCE(t.tracked_seconds,0), t.timer_started_at, u.username`

const taskFrom = ` FROM tasks t LEFT JOIN users u ON u.id = t.owner_id `

type rowScanner interface{ Scan(dest ...any) error }

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t                            model.Task
		completedAt, timerStartedAt  sql.NullString
		regReason, regReasonAt       sql.NullString
		parentID, ownerID            sql.NullInt64
		ownerUsername                sql.NullString
		tagsJSON, checklistJSON      string
	)
	err := row.Scan(&t.ID, &t.Code, &t.Title, &t.Status, &t.Priority,
		&t.Description, &t.CreatedAt, &completedAt, &t.Assignee,
		&parentID, &t.UpdatedAt, &tagsJSON, &checklistJSON,
		&ownerID, &regReason, &regReasonAt,
		&t.TrackedSeconds, &timerStartedAt, &ownerUsername)
	if err != nil {
		return model.Task{}, err
	}
	t.CompletedAt = nullStr(completedAt)
	t.TimerStartedAt = nullStr(timerStartedAt)
	t.RegressionReason = nullStr(regReason)
	t.RegressionReasonAt = nullStr(regReasonAt)
	t.ParentID = nullInt(parentID)
	t.OwnerID = nullInt(ownerID)
	t.OwnerUsername = nullStr(ownerUsername)
	t.Tags = decodeTags(tagsJSON)
	t.Checklist = decodeChecklist(checklistJSON)
	return t, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

// Malformed JSON in a tags/checklist column degrades to an empty slice
// instead of failing the whole listing.
func decodeTags(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func decodeChecklist(raw string) []model.ChecklistItem {
	var out []model.ChecklistItem
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []model.ChecklistItem{}
	}
	return out
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTask(ctx context.Context, q queryRower, id int64) (model.Task, error) {
	return scanTask(q.QueryRowContext(ctx,
		"SELECT "+taskCols+taskFrom+"WHERE t.id = ? LIMIT 1", id))
}

// GetByID fetches a single task with its owner username.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (model.Task, error) {
	return getTask(ctx, r.DB, id)
}

// taskCode formats the display code for a row id. The tasks table is
// AUTOINCREMENT, so ids are never reused and codes stay unique even
// after the highest-id task is deleted.
func taskCode(id int64) string { return fmt.Sprintf("TASK-%03d", id) }

// Create inserts a task, deriving its code from the assigned row id, and
// returns the stored row.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var parentID, ownerID any
	if t.ParentID != nil {
		parentID = *t.ParentID
	}
	if t.OwnerID != nil {
		ownerID = *t.OwnerID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (title, status, priority, description, assignee, parent_id, tags, checklist, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Status, t.Priority, t.Description, t.Assignee,
		parentID, encodeJSON(t.Tags), encodeJSON(t.Checklist), ownerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET code = ? WHERE id = ?", taskCode(id), id); err != nil {
		return err
	}
	stored, err := getTask(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	*t = stored
	return nil
}

// ListFilter scopes a task listing. Non-admins always see only their own
// and unowned tasks; admins may narrow by owner.
type ListFilter struct {
	UserID    int64
	Admin     bool
	OwnerNone bool
	OwnerID   *int64
}

// List returns tasks visible under the filter.
func (r *TaskRepo) List(ctx context.Context, f ListFilter) ([]model.Task, error) {
	where := []string{}
	args := []any{}
	if !f.Admin {
		where = append(where, "(t.owner_id = ? OR t.owner_id IS NULL)")
		args = append(args, f.UserID)
	} else if f.OwnerNone {
		where = append(where, "t.owner_id IS NULL")
	} else if f.OwnerID != nil {
		where = append(where, "t.owner_id = ?")
		args = append(args, *f.OwnerID)
	}

	query := "SELECT " + taskCols + taskFrom
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TaskUpdate describes a partial update. Nil pointers leave the column
// untouched; OwnerSet/ParentSet distinguish "clear" from "not supplied".
type TaskUpdate struct {
	Title            *string
	Status           *string
	SetCompletedAt   bool
	ClearCompletedAt bool
	RegressionReason *string
	Priority         *string
	Description      *string
	Assignee         *string
	Tags             *[]string
	Checklist        *[]model.ChecklistItem
	OwnerSet         bool
	OwnerID          *int64
	ParentSet        bool
	ParentID         *int64
}

// Empty reports whether no field would change.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Status == nil && u.Priority == nil &&
		u.Description == nil && u.Assignee == nil && u.Tags == nil &&
		u.Checklist == nil && !u.OwnerSet && !u.ParentSet
}

// Update applies the partial update and returns the affected row count.
func (r *TaskRepo) Update(ctx context.Context, id int64, u TaskUpdate) (int64, error) {
	sets := []string{}
	args := []any{}
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
		if u.SetCompletedAt {
			sets = append(sets, "completed_at = datetime('now')")
		}
		if u.ClearCompletedAt {
			sets = append(sets, "completed_at = NULL")
		}
		if u.RegressionReason != nil {
			sets = append(sets, "regression_reason = ?", "regression_reason_at = datetime('now')")
			args = append(args, *u.RegressionReason)
		}
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *u.Priority)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Assignee != nil {
		sets = append(sets, "assignee = ?")
		args = append(args, *u.Assignee)
	}
	if u.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, encodeJSON(*u.Tags))
	}
	if u.Checklist != nil {
		sets = append(sets, "checklist = ?")
		args = append(args, encodeJSON(*u.Checklist))
	}
	if u.OwnerSet {
		if u.OwnerID == nil {
			sets = append(sets, "owner_id = NULL")
		} else {
			sets = append(sets, "owner_id = ?")
			args = append(args, *u.OwnerID)
		}
	}
	if u.ParentSet {
		if u.ParentID == nil {
			sets = append(sets, "parent_id = NULL")
		} else {
			sets = append(sets, "parent_id = ?")
			args = append(args, *u.ParentID)
		}
	}
	if len(sets) == 0 {
		return 0, nil
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasChildren reports whether any task points at id as its parent.
func (r *TaskRepo) HasChildren(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM tasks WHERE parent_id = ? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteWithChildren removes a task and its direct children. Rows in
// 'done' status are snapshotted into task_archive first; everything runs
// in one transaction so a failed snapshot aborts the delete.
func (r *TaskRepo) DeleteWithChildren(ctx context.Context, id int64, deletedBy string) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO task_archive (task_id, code, title, original_status, priority, assignee,
			owner_id, owner_username, tags, description, parent_id, checklist,
			tracked_seconds, deleted_at, deleted_by)
		 SELECT t.id, t.code, t.title, t.status, t.priority, t.assignee,
			t.owner_id, u.username, COALESCE(t.tags,'[]'), t.description, t.parent_id,
			COALESCE(t.checklist,'[]'), COALESCE(t.tracked_seconds,0), datetime('now'), ?
		 FROM tasks t LEFT JOIN users u ON u.id = t.owner_id
		 WHERE (t.id = ? OR t.parent_id = ?) AND t.status = 'done'`,
		deletedBy, id, id)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}

	// Children go first so the parent row never violates the FK on
	// parent_id mid-transaction.
	children, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE parent_id = ?", id)
	if err != nil {
		return 0, err
	}
	childCount, err := children.RowsAffected()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	deleted += childCount
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// StartTimer records the timer start instant. Returns ErrConflict when a
// timer is already running for the task.
func (r *TaskRepo) StartTimer(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET timer_started_at = datetime('now'), updated_at = datetime('now')
		 WHERE id = ? AND timer_started_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// StopTimer folds the elapsed seconds into tracked_seconds and clears the
// start mark. Returns ErrConflict when no timer is running.
func (r *TaskRepo) StopTimer(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET
			tracked_seconds = COALESCE(tracked_seconds,0) +
				CAST((julianday('now') - julianday(timer_started_at)) * 86400 AS INTEGER),
			timer_started_at = NULL,
			updated_at = datetime('now')
		 WHERE id = ? AND timer_started_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// RestoreArchived creates a fresh backlog task from an archive entry and
// marks the entry restored, all in one transaction. A concurrent restore
// of the same entry loses with ErrConflict.
func (r *TaskRepo) RestoreArchived(ctx context.Context, rec model.ArchiveEntry, ownerID *int64, restoredBy, description string) (model.Task, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, err
	}
	defer func() { _ = tx.Rollback() }()

	priority := model.PriorityMedium
	if rec.Priority != nil {
		priority = model.NormalizePriority(*rec.Priority)
	}
	assignee := ""
	if rec.Assignee != nil {
		assignee = *rec.Assignee
	}
	var owner any
	if ownerID != nil {
		owner = *ownerID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (title, status, priority, description, assignee, parent_id, tags, checklist, owner_id)
		 VALUES (?, 'backlog', ?, ?, ?, NULL, ?, ?, ?)`,
		rec.Title, priority, description, assignee,
		encodeJSON(rec.Tags), encodeJSON(rec.Checklist), owner)
	if err != nil {
		return model.Task{}, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET code = ? WHERE id = ?", taskCode(newID), newID); err != nil {
		return model.Task{}, err
	}

	mark, err := tx.ExecContext(ctx,
		`UPDATE task_archive SET restored_at = datetime('now'), restored_by = ?, restored_task_id = ?
		 WHERE id = ? AND restored_at IS NULL`,
		restoredBy, newID, rec.ID)
	if err != nil {
		return model.Task{}, err
	}
	n, err := mark.RowsAffected()
	if err != nil {
		return model.Task{}, err
	}
	if n == 0 {
		return model.Task{}, ErrConflict
	}

	restored, err := getTask(ctx, tx, newID)
	if err != nil {
		return model.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Task{}, err
	}
	return restored, nil
}
