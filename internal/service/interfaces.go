package service

import (
	"context"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/workflow"
)

// Issue and project arguments named ref accept either the id or the human
// key ("PROJ-12" for issues, "PROJ" for projects).

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, ref string) error
	Config(ctx context.Context, ref string) (*domain.ProjectConfig, error)
	ReplaceConfig(ctx context.Context, ref string, cfg *domain.ProjectConfig) error
}

type IssueService interface {
	Create(ctx context.Context, req contract.CreateIssueRequest) (*domain.Issue, error)
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetByKey(ctx context.Context, key string) (*domain.Issue, error)
	Resolve(ctx context.Context, ref string) (*domain.Issue, error)
	ListByProject(ctx context.Context, projectRef string) ([]*domain.Issue, error)
	CanTransition(ctx context.Context, ref, status string) (workflow.Decision, error)
	Transition(ctx context.Context, ref, status string) (*domain.Issue, error)
	Update(ctx context.Context, req contract.UpdateIssueRequest) (*domain.Issue, error)
}

type RelationshipService interface {
	Link(ctx context.Context, req contract.LinkRequest) (*contract.Hierarchy, error)
	Reparent(ctx context.Context, req contract.ReparentRequest) (*contract.Hierarchy, error)
	Unlink(ctx context.Context, req contract.UnlinkRequest) (*contract.Hierarchy, error)
	Hierarchy(ctx context.Context, ref string) (*contract.Hierarchy, error)
	CreateSubtask(ctx context.Context, req contract.SubtaskRequest) (*domain.Issue, error)
	DeleteIssue(ctx context.Context, ref string) error
}

type BoardService interface {
	Board(ctx context.Context, projectRef string) (*contract.BoardView, error)
	DropTargets(ctx context.Context, issueRef string) (map[string]bool, error)
}
