package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/issueflow/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type ProjectSequenceRepo interface {
	NextProjectSeq(ctx context.Context, projectID string) (int, error)
}

type IssueRepo interface {
	Create(ctx context.Context, i *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetByKey(ctx context.Context, key string) (*domain.Issue, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Issue, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.Issue, error)
	Update(ctx context.Context, i *domain.Issue) error
	SetParent(ctx context.Context, id, parentID string, updatedAt time.Time) error
	OrphanChildren(ctx context.Context, parentID string, updatedAt time.Time) (int, error)
	Delete(ctx context.Context, id string) error
}

// LinkRepo stores one directed record per unordered issue pair.
type LinkRepo interface {
	Create(ctx context.Context, l *domain.Link) error
	GetBetween(ctx context.Context, a, b string) (*domain.Link, error)
	ListForIssue(ctx context.Context, issueID string) ([]domain.Link, error)
	DeleteBetween(ctx context.Context, a, b string) (int, error)
	DeleteForIssue(ctx context.Context, issueID string) (int, error)
}

type ProjectConfigRepo interface {
	Get(ctx context.Context, projectID string) (*domain.ProjectConfig, error)
	Replace(ctx context.Context, projectID string, cfg *domain.ProjectConfig) error
}
