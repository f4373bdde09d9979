package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is re-run on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillProjectSequences(db); err != nil {
		return fmt.Errorf("backfilling project sequence allocator state: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		key        TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS project_sequences (
		project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		next_seq   INTEGER NOT NULL CHECK(next_seq > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS issues (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		key        TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		type       TEXT NOT NULL,
		status     TEXT NOT NULL,
		parent_id  TEXT REFERENCES issues(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(project_id, seq),
		CHECK(parent_id IS NULL OR parent_id != id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_parent ON issues(parent_id)`,

	`CREATE TABLE IF NOT EXISTS issue_links (
		source_id  TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		target_id  TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		link_type  TEXT NOT NULL
		           CHECK(link_type IN ('relates_to','blocks','is_blocked_by','duplicates','is_duplicated_by')),
		created_at TEXT NOT NULL,
		PRIMARY KEY (source_id, target_id),
		CHECK(source_id != target_id)
	)`,

	// One record per unordered pair.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_issue_links_pair
		ON issue_links(min(source_id, target_id), max(source_id, target_id))`,
	`CREATE INDEX IF NOT EXISTS idx_issue_links_target ON issue_links(target_id)`,

	`CREATE TABLE IF NOT EXISTS issue_types (
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		workflow     TEXT NOT NULL DEFAULT '[]',
		is_active    INTEGER NOT NULL DEFAULT 1,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS statuses (
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		color        TEXT NOT NULL DEFAULT '',
		is_final     INTEGER NOT NULL DEFAULT 0,
		is_default   INTEGER NOT NULL DEFAULT 0,
		position     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, name)
	)`,

	// Issue descriptions were added after the first release.
	`ALTER TABLE issues ADD COLUMN description TEXT NOT NULL DEFAULT ''`,
}

// migrateBackfillProjectSequences makes sure every project has allocator
// state at least one past its highest issue seq. Databases whose issues were
// written before the allocator existed get repaired here.
func migrateBackfillProjectSequences(db *sql.DB) error {
	ctx := context.Background()

	query := `INSERT INTO project_sequences (project_id, next_seq)
		SELECT p.id, COALESCE(MAX(i.seq), 0) + 1
		FROM projects p
		LEFT JOIN issues i ON i.project_id = p.id AND i.seq > 0
		GROUP BY p.id
		ON CONFLICT(project_id) DO UPDATE
		SET next_seq = MAX(project_sequences.next_seq, excluded.next_seq)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("upserting project sequence rows: %w", err)
	}

	return nil
}
