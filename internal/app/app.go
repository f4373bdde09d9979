// Package app wires repositories, the workflow registry and services into
// the use-case set shared by the REST, MCP and CLI front ends.
package app

import (
	"database/sql"
	"log/slog"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/service"
	"github.com/alexanderramin/issueflow/internal/workflow"
)

// Services is the full set of use cases a front end may call.
type Services struct {
	Projects      service.ProjectService
	Issues        service.IssueService
	Relationships service.RelationshipService
	Boards        service.BoardService
	Import        service.ConfigImportService

	Registry *workflow.Registry
}

// Wire builds Services over database. A nil logger disables use-case
// logging.
func Wire(database *sql.DB, logger *slog.Logger, opts ...db.UoWOption) *Services {
	projectRepo := repository.NewSQLiteProjectRepo(database)
	issueRepo := repository.NewSQLiteIssueRepo(database)
	configRepo := repository.NewSQLiteProjectConfigRepo(database)

	uow := db.NewSQLiteUnitOfWork(database, opts...)
	registry := workflow.NewRegistry(configRepo)
	observer := service.NewSlogUseCaseObserver(logger)

	projects := service.NewProjectService(projectRepo, configRepo, registry, uow, observer)
	return &Services{
		Projects:      projects,
		Issues:        service.NewIssueService(issueRepo, projectRepo, registry, uow, observer),
		Relationships: service.NewRelationshipService(registry, uow, observer),
		Boards:        service.NewBoardService(projectRepo, issueRepo, registry),
		Import:        service.NewConfigImportService(projects, observer),
		Registry:      registry,
	}
}
