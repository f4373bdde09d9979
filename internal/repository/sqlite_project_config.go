package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
)

// SQLiteProjectConfigRepo stores per-project issue types and statuses.
// Workflows are kept as a JSON array of status names.
type SQLiteProjectConfigRepo struct {
	db db.DBTX
}

// NewSQLiteProjectConfigRepo creates a new SQLiteProjectConfigRepo.
func NewSQLiteProjectConfigRepo(conn db.DBTX) *SQLiteProjectConfigRepo {
	return &SQLiteProjectConfigRepo{db: conn}
}

// Get loads the project's configuration in stored order. A project with no
// issue types and no statuses returns ErrNotFound.
func (r *SQLiteProjectConfigRepo) Get(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	cfg := &domain.ProjectConfig{}

	typeRows, err := r.db.QueryContext(ctx,
		`SELECT name, display_name, workflow, is_active FROM issue_types
		WHERE project_id = ? ORDER BY position, name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing issue types: %w", err)
	}
	for typeRows.Next() {
		var t domain.IssueTypeDef
		var workflow string
		var active int
		if err := typeRows.Scan(&t.Name, &t.DisplayName, &workflow, &active); err != nil {
			typeRows.Close()
			return nil, fmt.Errorf("scanning issue type: %w", err)
		}
		if err := json.Unmarshal([]byte(workflow), &t.Workflow); err != nil {
			typeRows.Close()
			return nil, fmt.Errorf("decoding workflow of issue type %s: %w", t.Name, err)
		}
		t.IsActive = intToBool(active)
		cfg.IssueTypes = append(cfg.IssueTypes, t)
	}
	if err := typeRows.Err(); err != nil {
		typeRows.Close()
		return nil, fmt.Errorf("iterating issue types: %w", err)
	}
	typeRows.Close()

	statusRows, err := r.db.QueryContext(ctx,
		`SELECT name, display_name, color, is_final, is_default FROM statuses
		WHERE project_id = ? ORDER BY position, name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var s domain.Status
		var final, def int
		if err := statusRows.Scan(&s.Name, &s.DisplayName, &s.Color, &final, &def); err != nil {
			return nil, fmt.Errorf("scanning status: %w", err)
		}
		s.IsFinal = intToBool(final)
		s.IsDefault = intToBool(def)
		cfg.Statuses = append(cfg.Statuses, s)
	}
	if err := statusRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statuses: %w", err)
	}

	if cfg.IsEmpty() {
		return nil, fmt.Errorf("config for project %s: %w", projectID, ErrNotFound)
	}
	return cfg, nil
}

// ProjectConfig makes the repository usable as a workflow.ConfigProvider.
func (r *SQLiteProjectConfigRepo) ProjectConfig(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	return r.Get(ctx, projectID)
}

// Replace swaps the project's whole configuration. Run it inside a
// transaction so readers never see a half-written set.
func (r *SQLiteProjectConfigRepo) Replace(ctx context.Context, projectID string, cfg *domain.ProjectConfig) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM issue_types WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing issue types: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing statuses: %w", err)
	}
	if cfg == nil {
		return nil
	}

	for pos, t := range cfg.IssueTypes {
		workflow := t.Workflow
		if workflow == nil {
			workflow = []string{}
		}
		encoded, err := json.Marshal(workflow)
		if err != nil {
			return fmt.Errorf("encoding workflow of issue type %s: %w", t.Name, err)
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO issue_types (project_id, name, display_name, workflow, is_active, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			projectID, t.Name, t.DisplayName, string(encoded), boolToInt(t.IsActive), pos)
		if err != nil {
			return fmt.Errorf("inserting issue type %s: %w", t.Name, err)
		}
	}

	for pos, s := range cfg.Statuses {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO statuses (project_id, name, display_name, color, is_final, is_default, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			projectID, s.Name, s.DisplayName, s.Color, boolToInt(s.IsFinal), boolToInt(s.IsDefault), pos)
		if err != nil {
			return fmt.Errorf("inserting status %s: %w", s.Name, err)
		}
	}
	return nil
}
