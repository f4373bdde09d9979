package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/workflow"
	"github.com/google/uuid"
)

type issueService struct {
	issues   repository.IssueRepo
	projects repository.ProjectRepo
	registry *workflow.Registry
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewIssueService(
	issues repository.IssueRepo,
	projects repository.ProjectRepo,
	registry *workflow.Registry,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) IssueService {
	return &issueService{
		issues:   issues,
		projects: projects,
		registry: registry,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *issueService) Create(ctx context.Context, req contract.CreateIssueRequest) (created *domain.Issue, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": req.ProjectID, "type": req.Type}
	defer func() { observeUseCase(ctx, s.observer, "create-issue", startedAt, fields, err) }()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.InputError("title is required")
	}
	issueType := domain.CoalesceStr(strings.TrimSpace(req.Type), domain.TypeTask)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		reg := repos.registry(s.registry)

		project, err := resolveProject(ctx, repos.projects, req.ProjectID)
		if err != nil {
			return err
		}
		cfg, err := reg.Config(ctx, project.ID)
		if err != nil {
			return err
		}
		if !typeAvailable(reg, cfg, issueType) {
			return domain.InputError("issue type %q is not available in project %s", issueType, project.Key)
		}

		now := time.Now().UTC()
		issue := &domain.Issue{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			Title:       title,
			Description: req.Description,
			Type:        issueType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Status != "" {
			if err := workflow.Evaluate(issue, req.Status, reg.Resolve(cfg, issueType)).Err(); err != nil {
				return err
			}
			issue.Status = req.Status
		} else {
			issue.Status = reg.DefaultStatus(cfg, issueType).Name
		}

		if err := allocateIssueKey(ctx, repos, project, issue); err != nil {
			return err
		}
		if err := repos.issues.Create(ctx, issue); err != nil {
			return err
		}
		created = issue
		fields["issue_key"] = issue.Key
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *issueService) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

func (s *issueService) GetByKey(ctx context.Context, key string) (*domain.Issue, error) {
	return s.issues.GetByKey(ctx, key)
}

func (s *issueService) Resolve(ctx context.Context, ref string) (*domain.Issue, error) {
	return resolveIssue(ctx, s.issues, ref)
}

func (s *issueService) ListByProject(ctx context.Context, projectRef string) ([]*domain.Issue, error) {
	project, err := resolveProject(ctx, s.projects, projectRef)
	if err != nil {
		return nil, err
	}
	return s.issues.ListByProject(ctx, project.ID)
}

func (s *issueService) CanTransition(ctx context.Context, ref, status string) (workflow.Decision, error) {
	issue, err := resolveIssue(ctx, s.issues, ref)
	if err != nil {
		return workflow.Decision{}, err
	}
	return workflow.NewValidator(s.registry).CanTransition(ctx, issue, status)
}

func (s *issueService) Transition(ctx context.Context, ref, status string) (*domain.Issue, error) {
	return s.Update(ctx, contract.UpdateIssueRequest{IssueID: ref, Status: &status})
}

// Update validates the whole edit before writing anything. A status equal
// to the current one is not a change; a request that changes nothing
// returns the issue without touching storage.
func (s *issueService) Update(ctx context.Context, req contract.UpdateIssueRequest) (updated *domain.Issue, err error) {
	startedAt := time.Now()
	fields := map[string]any{"issue_ref": req.IssueID}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	name := "update-issue"
	if req.StatusOnly() {
		name = "transition-issue"
	}
	defer func() { observeUseCase(ctx, s.observer, name, startedAt, fields, err) }()

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, domain.InputError("title cannot be empty")
	}
	if req.Status != nil && *req.Status == "" {
		return nil, domain.InputError("status cannot be empty")
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)

		issue, err := resolveIssue(ctx, repos.issues, req.IssueID)
		if err != nil {
			return err
		}
		updated = issue

		changed := false
		if req.Status != nil {
			d, err := workflow.NewValidator(repos.registry(s.registry)).CanTransition(ctx, issue, *req.Status)
			if err != nil {
				return err
			}
			if err := d.Err(); err != nil {
				return err
			}
			if !d.NoOp {
				fields["from_status"] = issue.Status
				issue.Status = *req.Status
				changed = true
			}
		}
		if req.Title != nil && strings.TrimSpace(*req.Title) != issue.Title {
			issue.Title = strings.TrimSpace(*req.Title)
			changed = true
		}
		if req.Description != nil && *req.Description != issue.Description {
			issue.Description = *req.Description
			changed = true
		}

		fields["changed"] = changed
		if !changed {
			return nil
		}
		issue.UpdatedAt = time.Now().UTC()
		return repos.issues.Update(ctx, issue)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// typeAvailable reports whether new issues may use issueType. A configured
// definition decides through its active flag; the default vocabulary only
// covers names the project does not define.
func typeAvailable(reg *workflow.Registry, cfg *domain.ProjectConfig, issueType string) bool {
	if def, ok := cfg.IssueType(issueType); ok {
		return def.IsActive
	}
	return slices.Contains(reg.IssueTypes(cfg), issueType) || slices.Contains(domain.DefaultIssueTypes, issueType)
}
