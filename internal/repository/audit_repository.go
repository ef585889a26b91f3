package repository

import (
	"context"
	"database/sql"

	"github.com/vmeirelles/taskboard/internal/model"
)

// AuditRepo appends and reads the audit trail.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert appends one audit row.
func (r *AuditRepo) Insert(ctx context.Context, rec model.AuditRecord) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit (user, action, method, path, date) VALUES (?, ?, ?, ?, ?)",
		rec.User, rec.Action, rec.Method, rec.Path, rec.Date)
	return err
}

// List returns the newest audit rows, capped at 100. Non-admins only see
// rows recorded under their own username.
func (r *AuditRepo) List(ctx context.Context, username string, admin bool) ([]model.AuditRecord, error) {
	query := "SELECT id, user, action, method, path, date FROM audit"
	args := []any{}
	if !admin {
		query += " WHERE user = ?"
		args = append(args, username)
	}
	query += " ORDER BY date DESC LIMIT 100"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AuditRecord{}
	for rows.Next() {
		var rec model.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.User, &rec.Action, &rec.Method, &rec.Path, &rec.Date); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
