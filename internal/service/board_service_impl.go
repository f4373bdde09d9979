package service

import (
	"context"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/workflow"
)

type boardService struct {
	projects  repository.ProjectRepo
	issues    repository.IssueRepo
	registry  *workflow.Registry
	projector *workflow.Projector
}

// NewBoardService reads through the root repositories; registry must carry
// a configuration provider for project workflows to apply.
func NewBoardService(projects repository.ProjectRepo, issues repository.IssueRepo, registry *workflow.Registry) BoardService {
	return &boardService{
		projects:  projects,
		issues:    issues,
		registry:  registry,
		projector: workflow.NewProjector(registry),
	}
}

func (s *boardService) Board(ctx context.Context, projectRef string) (*contract.BoardView, error) {
	project, err := resolveProject(ctx, s.projects, projectRef)
	if err != nil {
		return nil, err
	}
	cfg, err := s.registry.Config(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	issues, err := s.issues.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	board := s.projector.Project(issues, cfg)
	view := &contract.BoardView{
		ProjectID: project.ID,
		Columns:   make([]contract.BoardColumn, 0, len(board.Columns)),
		Unplaced:  make([]contract.BoardCard, 0, len(board.Unplaced)),
	}
	order := make([]string, len(board.Columns))
	for i, c := range board.Columns {
		order[i] = c.Status.Name
	}
	card := func(issue *domain.Issue) contract.BoardCard {
		targets := s.projector.DropTargetsWith(cfg, issue)
		valid := make([]string, 0, len(targets))
		for _, name := range order {
			if targets[name] {
				valid = append(valid, name)
			}
		}
		return contract.BoardCard{Issue: issue, ValidDropTargets: valid}
	}

	for _, c := range board.Columns {
		col := contract.BoardColumn{Status: c.Status, Cards: make([]contract.BoardCard, 0, len(c.Issues))}
		for _, issue := range c.Issues {
			col.Cards = append(col.Cards, card(issue))
		}
		view.Columns = append(view.Columns, col)
	}
	for _, issue := range board.Unplaced {
		view.Unplaced = append(view.Unplaced, card(issue))
	}
	return view, nil
}

func (s *boardService) DropTargets(ctx context.Context, issueRef string) (map[string]bool, error) {
	issue, err := resolveIssue(ctx, s.issues, issueRef)
	if err != nil {
		return nil, err
	}
	return s.projector.DropTargets(ctx, issue)
}
