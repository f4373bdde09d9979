package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/importer"
)

// ConfigImportResult reports what an import stored.
type ConfigImportResult struct {
	Project *domain.Project
	Config  *domain.ProjectConfig
}

type ConfigImportService interface {
	ImportConfig(ctx context.Context, projectRef, path string) (*ConfigImportResult, error)
	ImportConfigSchema(ctx context.Context, projectRef string, schema *importer.ConfigSchema) (*ConfigImportResult, error)
}

type configImportService struct {
	projects ProjectService
	observer UseCaseObserver
}

func NewConfigImportService(projects ProjectService, observers ...UseCaseObserver) ConfigImportService {
	return &configImportService{projects: projects, observer: useCaseObserverOrNoop(observers)}
}

// ImportConfig loads a YAML, TOML or JSON workflow file and replaces the
// project's configuration with it. An empty projectRef uses the file's
// project key.
func (s *configImportService) ImportConfig(ctx context.Context, projectRef, path string) (result *ConfigImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"path": path}
	defer func() { observeUseCase(ctx, s.observer, "import-config", startedAt, fields, err) }()

	schema, err := importer.LoadConfigSchema(path)
	if err != nil {
		return nil, domain.InputError("%v", err)
	}
	return s.ImportConfigSchema(ctx, projectRef, schema)
}

func (s *configImportService) ImportConfigSchema(ctx context.Context, projectRef string, schema *importer.ConfigSchema) (*ConfigImportResult, error) {
	ref := domain.CoalesceStr(projectRef, schema.Project)
	if ref == "" {
		return nil, domain.InputError("no project given and the file names none")
	}
	if errs := importer.ValidateConfigSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}

	project, err := s.projects.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	cfg := importer.Convert(schema)
	if err := s.projects.ReplaceConfig(ctx, project.ID, cfg); err != nil {
		return nil, err
	}
	return &ConfigImportResult{Project: project, Config: cfg}, nil
}
