package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// taskColumns lists the columns added to the tasks table after its first
// release, with the DDL fragment used when a deployed database predates
// them. The probe keeps startup migrations idempotent.
var taskColumns = []struct {
	name string
	ddl  string
}{
	{"parent_id", "INTEGER REFERENCES tasks(id)"},
	{"code", "TEXT"},
	{"updated_at", "TEXT DEFAULT (datetime('now'))"},
	{"tags", "TEXT DEFAULT '[]'"},
	{"checklist", "TEXT DEFAULT '[]'"},
	{"owner_id", "INTEGER REFERENCES users(id)"},
	{"regression_reason", "TEXT"},
	{"regression_reason_at", "TEXT"},
	{"tracked_seconds", "INTEGER DEFAULT 0"},
	{"timer_started_at", "TEXT"},
}

// Open creates the parent directory if needed, opens the SQLite file and
// applies the schema plus column migrations.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// busy_timeout and foreign_keys are per-connection pragmas; they
	// ride the DSN so every connection the pool opens gets them, not
	// just the first. _txlock=immediate makes write transactions take
	// the lock up front instead of failing on upgrade.
	dsn := path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := applySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := ensureTaskColumns(ctx, db); err != nil {
		return err
	}
	return ensureColumn(ctx, db, "task_archive", "tracked_seconds", "INTEGER DEFAULT 0")
}

func ensureTaskColumns(ctx context.Context, db *sql.DB) error {
	for _, col := range taskColumns {
		if err := ensureColumn(ctx, db, "tasks", col.name, col.ddl); err != nil {
			return err
		}
	}
	return nil
}

// ensureColumn probes pragma_table_info and adds the column when missing.
func ensureColumn(ctx context.Context, db *sql.DB, table, column, ddl string) error {
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM pragma_table_info(?) WHERE name = ? LIMIT 1",
		table, column).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check %s.%s column: %w", table, column, err)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}
	return nil
}
