package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/workflow"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	configs  repository.ProjectConfigRepo
	registry *workflow.Registry
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	configs repository.ProjectConfigRepo,
	registry *workflow.Registry,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects: projects,
		configs:  configs,
		registry: registry,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_key": p.Key}
	defer func() { observeUseCase(ctx, s.observer, "create-project", startedAt, fields, err) }()

	p.Key = strings.TrimSpace(p.Key)
	p.Name = strings.TrimSpace(p.Name)
	if err := p.ValidateKey(); err != nil {
		return domain.InputError("%v", err)
	}
	if p.Name == "" {
		return domain.InputError("project name is required")
	}
	if _, err := s.projects.GetByKey(ctx, p.Key); err == nil {
		return domain.InputError("project key %s is already in use", p.Key)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.projects.Create(ctx, p)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	return s.projects.GetByKey(ctx, key)
}

func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	return resolveProject(ctx, s.projects, ref)
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

// Delete removes the project; issues, links and configuration cascade.
func (s *projectService) Delete(ctx context.Context, ref string) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_ref": ref}
	defer func() { observeUseCase(ctx, s.observer, "delete-project", startedAt, fields, err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		p, err := resolveProject(ctx, repos.projects, ref)
		if err != nil {
			return err
		}
		return repos.projects.Delete(ctx, p.ID)
	})
}

// Config returns the stored configuration, or the default one when the
// project has none.
func (s *projectService) Config(ctx context.Context, ref string) (*domain.ProjectConfig, error) {
	p, err := resolveProject(ctx, s.projects, ref)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Get(ctx, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.registry.DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *projectService) ReplaceConfig(ctx context.Context, ref string, cfg *domain.ProjectConfig) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_ref": ref}
	defer func() { observeUseCase(ctx, s.observer, "replace-project-config", startedAt, fields, err) }()

	if cfg == nil {
		return domain.InputError("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return domain.InputError("%v", err)
	}
	fields["issue_types"] = len(cfg.IssueTypes)
	fields["statuses"] = len(cfg.Statuses)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := newTxRepos(tx)
		p, err := resolveProject(ctx, repos.projects, ref)
		if err != nil {
			return err
		}
		return repos.configs.Replace(ctx, p.ID, cfg)
	})
}
