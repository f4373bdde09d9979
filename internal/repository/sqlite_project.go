package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
)

const projectColumns = `id, key, name, created_at, updated_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Key,
		p.Name,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapScanError(err, "project", id)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE key = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, strings.ToUpper(key)))
	if err != nil {
		return nil, wrapScanError(err, "project", key)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET key = ?, name = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, p.Key, p.Name, formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Key, &p.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	p.CreatedAt, p.UpdatedAt, err = parseTimes(createdAt, updatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
