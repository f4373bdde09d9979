package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
)

// issueColumns is the canonical SELECT column list for issues.
const issueColumns = `id, project_id, seq, key, title, description, type, status,
		parent_id, created_at, updated_at`

// SQLiteIssueRepo implements IssueRepo using a SQLite database.
type SQLiteIssueRepo struct {
	db db.DBTX
}

// NewSQLiteIssueRepo creates a new SQLiteIssueRepo.
func NewSQLiteIssueRepo(conn db.DBTX) *SQLiteIssueRepo {
	return &SQLiteIssueRepo{db: conn}
}

func (r *SQLiteIssueRepo) Create(ctx context.Context, i *domain.Issue) error {
	query := `INSERT INTO issues (` + issueColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		i.ID,
		i.ProjectID,
		i.Seq,
		i.Key,
		i.Title,
		i.Description,
		i.Type,
		i.Status,
		nullableString(i.ParentID()),
		formatTime(i.CreatedAt),
		formatTime(i.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting issue: %w", err)
	}
	return nil
}

func (r *SQLiteIssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = ?`
	i, err := scanIssue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapScanError(err, "issue", id)
	}
	return i, nil
}

func (r *SQLiteIssueRepo) GetByKey(ctx context.Context, key string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE key = ?`
	i, err := scanIssue(r.db.QueryRowContext(ctx, query, strings.ToUpper(key)))
	if err != nil {
		return nil, wrapScanError(err, "issue", key)
	}
	return i, nil
}

func (r *SQLiteIssueRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE project_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing issues by project: %w", err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

// ListChildren returns the issues whose parent is parentID in creation order.
func (r *SQLiteIssueRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE parent_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child issues: %w", err)
	}
	defer rows.Close()
	return scanIssues(rows)
}

// Update writes the editable fields. The parent column is written only
// through SetParent and OrphanChildren.
func (r *SQLiteIssueRepo) Update(ctx context.Context, i *domain.Issue) error {
	query := `UPDATE issues SET title = ?, description = ?, type = ?, status = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		i.Title,
		i.Description,
		i.Type,
		i.Status,
		formatTime(i.UpdatedAt),
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("updating issue: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("issue %s: %w", i.ID, ErrNotFound)
	}
	return nil
}

// SetParent points id at parentID. An empty parentID detaches the issue.
func (r *SQLiteIssueRepo) SetParent(ctx context.Context, id, parentID string, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE issues SET parent_id = ?, updated_at = ? WHERE id = ?`,
		nullableString(parentID), formatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("setting parent of issue %s: %w", id, err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	return nil
}

// OrphanChildren clears the parent of every child of parentID and returns
// how many were detached.
func (r *SQLiteIssueRepo) OrphanChildren(ctx context.Context, parentID string, updatedAt time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE issues SET parent_id = NULL, updated_at = ? WHERE parent_id = ?`,
		formatTime(updatedAt), parentID)
	if err != nil {
		return 0, fmt.Errorf("orphaning children of issue %s: %w", parentID, err)
	}
	return rowsAffected(res), nil
}

func (r *SQLiteIssueRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting issue: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	var i domain.Issue
	var parentID sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(
		&i.ID, &i.ProjectID, &i.Seq, &i.Key, &i.Title, &i.Description,
		&i.Type, &i.Status, &parentID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		i.Parent = domain.Ref(parentID.String)
	}
	i.CreatedAt, i.UpdatedAt, err = parseTimes(createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func scanIssues(rows *sql.Rows) ([]*domain.Issue, error) {
	var issues []*domain.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning issue row: %w", err)
		}
		issues = append(issues, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issues: %w", err)
	}
	return issues, nil
}
