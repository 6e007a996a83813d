package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of idempotent schema statements. The whole
// list is re-run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS work_items (
		id                      TEXT PRIMARY KEY,
		subject                 TEXT NOT NULL,
		start_date              TEXT,
		due_date                TEXT,
		duration_days           INTEGER NOT NULL DEFAULT 0,
		parent_id               TEXT REFERENCES work_items(id) ON DELETE SET NULL,
		schedule_manually       INTEGER NOT NULL DEFAULT 0,
		ignore_non_working_days INTEGER NOT NULL DEFAULT 0,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id)`,

	`CREATE TABLE IF NOT EXISTS relations (
		predecessor_id TEXT NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		successor_id   TEXT NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		type           TEXT NOT NULL DEFAULT 'follows'
		               CHECK(type IN ('follows','relates','blocks')),
		PRIMARY KEY (predecessor_id, successor_id, type)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_relations_successor ON relations(successor_id)`,

	`CREATE TABLE IF NOT EXISTS non_working_days (
		date TEXT PRIMARY KEY
	)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
