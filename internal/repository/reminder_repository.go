package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vmeirelles/taskboard/internal/model"
)

// ReminderRepo persists per-user reminder notes.
type ReminderRepo struct{ DB *sql.DB }

func NewReminderRepo(db *sql.DB) *ReminderRepo { return &ReminderRepo{DB: db} }

const reminderCols = "id, user_id, text, done, created_at, updated_at"

func scanReminder(row rowScanner) (model.Reminder, error) {
	var (
		rem  model.Reminder
		done int
	)
	err := row.Scan(&rem.ID, &rem.UserID, &rem.Text, &done, &rem.CreatedAt, &rem.UpdatedAt)
	if err != nil {
		return model.Reminder{}, err
	}
	rem.Done = done != 0
	return rem, nil
}

// ListByUser returns a user's reminders, most recently updated first,
// capped at 100.
func (r *ReminderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Reminder, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reminderCols+` FROM reminders WHERE user_id = ?
		 ORDER BY datetime(updated_at) DESC, datetime(created_at) DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// Create inserts a reminder and returns the stored row.
func (r *ReminderRepo) Create(ctx context.Context, userID int64, text string) (model.Reminder, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reminders (user_id, text, done) VALUES (?, ?, 0)", userID, text)
	if err != nil {
		return model.Reminder{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Reminder{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches one reminder.
func (r *ReminderRepo) GetByID(ctx context.Context, id int64) (model.Reminder, error) {
	return scanReminder(r.DB.QueryRowContext(ctx,
		"SELECT "+reminderCols+" FROM reminders WHERE id = ? LIMIT 1", id))
}

// Update changes text and/or done and returns the stored row.
func (r *ReminderRepo) Update(ctx context.Context, id int64, text *string, done *bool) (model.Reminder, error) {
	sets := []string{}
	args := []any{}
	if text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *text)
	}
	if done != nil {
		v := 0
		if *done {
			v = 1
		}
		sets = append(sets, "done = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE reminders SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return model.Reminder{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a reminder and returns the affected row count.
func (r *ReminderRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
