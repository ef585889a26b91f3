package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vmeirelles/taskboard/internal/model"
)

// ArchiveRepo reads the soft-delete archive. Rows are written by
// TaskRepo.DeleteWithChildren and mutated only by RestoreArchived.
type ArchiveRepo struct{ DB *sql.DB }

func NewArchiveRepo(db *sql.DB) *ArchiveRepo { return &ArchiveRepo{DB: db} }

const archiveCols = `id, task_id, code, title, original_status, priority, assignee,
	owner_id, owner_username, COALESCE(tags,'[]'), description, parent_id,
	COALESCE(checklist,'[]'), COALESCE(tracked_seconds,0), deleted_at, deleted_by,
	restored_at, restored_by, restored_task_id`

func scanArchive(row rowScanner) (model.ArchiveEntry, error) {
	var (
		e                      model.ArchiveEntry
		taskID, ownerID        sql.NullInt64
		parentID, restoredID   sql.NullInt64
		code, status, priority sql.NullString
		assignee, ownerName    sql.NullString
		description, deletedBy sql.NullString
		restoredAt, restoredBy sql.NullString
		tagsJSON, checkJSON    string
	)
	err := row.Scan(&e.ID, &taskID, &code, &e.Title, &status, &priority, &assignee,
		&ownerID, &ownerName, &tagsJSON, &description, &parentID,
		&checkJSON, &e.TrackedSeconds, &e.DeletedAt, &deletedBy,
		&restoredAt, &restoredBy, &restoredID)
	if err != nil {
		return model.ArchiveEntry{}, err
	}
	e.TaskID = nullInt(taskID)
	e.Code = nullStr(code)
	e.OriginalStatus = nullStr(status)
	e.Priority = nullStr(priority)
	e.Assignee = nullStr(assignee)
	e.OwnerID = nullInt(ownerID)
	e.OwnerUsername = nullStr(ownerName)
	e.Description = nullStr(description)
	e.ParentID = nullInt(parentID)
	e.DeletedBy = nullStr(deletedBy)
	e.RestoredAt = nullStr(restoredAt)
	e.RestoredBy = nullStr(restoredBy)
	e.RestoredTaskID = nullInt(restoredID)
	e.Tags = decodeTags(tagsJSON)
	e.Checklist = decodeChecklist(checkJSON)
	return e, nil
}

// GetByID fetches one archive entry.
func (r *ArchiveRepo) GetByID(ctx context.Context, id int64) (model.ArchiveEntry, error) {
	return scanArchive(r.DB.QueryRowContext(ctx,
		"SELECT "+archiveCols+" FROM task_archive WHERE id = ? LIMIT 1", id))
}

// ArchiveFilter scopes an archive search. Non-admins see entries they
// own, unowned entries and entries they deleted themselves. Start/End
// are inclusive bounds on deleted_at in SQLite datetime format.
type ArchiveFilter struct {
	UserID          int64
	Username        string
	Admin           bool
	OwnerNone       bool
	OwnerID         *int64
	Search          string
	Start           string
	End             string
	IncludeRestored bool
}

// Search returns matching entries, newest deletions first, capped at 500.
func (r *ArchiveRepo) Search(ctx context.Context, f ArchiveFilter) ([]model.ArchiveEntry, error) {
	where := []string{}
	args := []any{}

	if !f.Admin {
		where = append(where, "(owner_id = ? OR owner_id IS NULL OR deleted_by = ?)")
		args = append(args, f.UserID, f.Username)
	} else if f.OwnerNone {
		where = append(where, "owner_id IS NULL")
	} else if f.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *f.OwnerID)
	}

	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(code) LIKE ? OR LOWER(assignee) LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like, like)
	}
	if f.Start != "" {
		where = append(where, "deleted_at >= ?")
		args = append(args, f.Start)
	}
	if f.End != "" {
		where = append(where, "deleted_at <= ?")
		args = append(args, f.End)
	}
	if !f.IncludeRestored {
		where = append(where, "restored_at IS NULL")
	}

	query := "SELECT " + archiveCols + " FROM task_archive"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY datetime(deleted_at) DESC LIMIT 500"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ArchiveEntry{}
	for rows.Next() {
		e, err := scanArchive(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
