package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacySchema simulates opening a database created
// before issue descriptions and the sequence allocator existed. Data must
// survive, the new column must appear with its default and allocator state
// must be derived from existing issues.
func TestMigrate_UpgradePath_LegacySchema(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	legacyStatements := []string{
		`CREATE TABLE projects (
			id         TEXT PRIMARY KEY,
			key        TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE issues (
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
		`INSERT INTO projects (id, key, name, created_at, updated_at)
			VALUES ('p1', 'OLD', 'Legacy Project', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`,
		`INSERT INTO issues (id, project_id, seq, key, title, type, status, created_at, updated_at)
			VALUES ('i7', 'p1', 7, 'OLD-7', 'Legacy bug', 'bug', 'qa', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`,
	}
	for _, stmt := range legacyStatements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	require.NoError(t, Migrate(db), "migration on legacy schema should succeed")

	var title, status, desc string
	err = db.QueryRow(`SELECT title, status, description FROM issues WHERE id = 'i7'`).Scan(&title, &status, &desc)
	require.NoError(t, err)
	assert.Equal(t, "Legacy bug", title, "issue should survive migration")
	assert.Equal(t, "qa", status)
	assert.Equal(t, "", desc, "new column gets its default")

	var next int
	require.NoError(t, db.QueryRow(`SELECT next_seq FROM project_sequences WHERE project_id = 'p1'`).Scan(&next))
	assert.Equal(t, 8, next, "allocator continues after the highest legacy seq")

	require.NoError(t, Migrate(db), "re-running Migrate on already-migrated DB should succeed")
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM issues`).Scan(&count))
	assert.Equal(t, 1, count)
}
