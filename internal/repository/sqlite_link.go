package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
)

// SQLiteLinkRepo implements LinkRepo using a SQLite database.
type SQLiteLinkRepo struct {
	db db.DBTX
}

// NewSQLiteLinkRepo creates a new SQLiteLinkRepo.
func NewSQLiteLinkRepo(conn db.DBTX) *SQLiteLinkRepo {
	return &SQLiteLinkRepo{db: conn}
}

func (r *SQLiteLinkRepo) Create(ctx context.Context, l *domain.Link) error {
	query := `INSERT INTO issue_links (source_id, target_id, link_type, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, l.SourceID, l.TargetID, string(l.Type), formatTime(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting link: %w", err)
	}
	return nil
}

// GetBetween returns the link record for the pair in whichever direction it
// was stored.
func (r *SQLiteLinkRepo) GetBetween(ctx context.Context, a, b string) (*domain.Link, error) {
	query := `SELECT source_id, target_id, link_type, created_at FROM issue_links
		WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)`
	l, err := scanLink(r.db.QueryRowContext(ctx, query, a, b, b, a))
	if err != nil {
		return nil, wrapScanError(err, "link", a+"<->"+b)
	}
	return l, nil
}

// ListForIssue returns every link touching issueID, oldest first.
func (r *SQLiteLinkRepo) ListForIssue(ctx context.Context, issueID string) ([]domain.Link, error) {
	query := `SELECT source_id, target_id, link_type, created_at FROM issue_links
		WHERE source_id = ? OR target_id = ?
		ORDER BY created_at, source_id, target_id`
	rows, err := r.db.QueryContext(ctx, query, issueID, issueID)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

func (r *SQLiteLinkRepo) DeleteBetween(ctx context.Context, a, b string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM issue_links WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)`,
		a, b, b, a)
	if err != nil {
		return 0, fmt.Errorf("deleting link: %w", err)
	}
	return rowsAffected(res), nil
}

func (r *SQLiteLinkRepo) DeleteForIssue(ctx context.Context, issueID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM issue_links WHERE source_id = ? OR target_id = ?`, issueID, issueID)
	if err != nil {
		return 0, fmt.Errorf("deleting links of issue %s: %w", issueID, err)
	}
	return rowsAffected(res), nil
}

func scanLink(row rowScanner) (*domain.Link, error) {
	var l domain.Link
	var linkType, createdAt string
	if err := row.Scan(&l.SourceID, &l.TargetID, &linkType, &createdAt); err != nil {
		return nil, err
	}
	l.Type = domain.LinkType(linkType)
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	l.CreatedAt = t
	return &l, nil
}
