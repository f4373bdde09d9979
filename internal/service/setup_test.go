package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/repository"
	"github.com/alexanderramin/issueflow/internal/testutil"
	"github.com/alexanderramin/issueflow/internal/workflow"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type fixture struct {
	db       *sql.DB
	projects *repository.SQLiteProjectRepo
	issues   *repository.SQLiteIssueRepo
	links    *repository.SQLiteLinkRepo
	configs  *repository.SQLiteProjectConfigRepo
	registry *workflow.Registry
	uow      db.UnitOfWork
	observer *recordingObserver

	projectSvc ProjectService
	issueSvc   IssueService
	rel        RelationshipService
	board      BoardService

	project *domain.Project
}

// newFixture wires every service against a fresh in-memory database and
// creates one project keyed PROJ.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		db:       database,
		projects: repository.NewSQLiteProjectRepo(database),
		issues:   repository.NewSQLiteIssueRepo(database),
		links:    repository.NewSQLiteLinkRepo(database),
		configs:  repository.NewSQLiteProjectConfigRepo(database),
		uow:      testutil.NewTestUoW(database),
		observer: &recordingObserver{},
	}
	f.registry = workflow.NewRegistry(f.configs)
	f.projectSvc = NewProjectService(f.projects, f.configs, f.registry, f.uow, f.observer)
	f.issueSvc = NewIssueService(f.issues, f.projects, f.registry, f.uow, f.observer)
	f.rel = NewRelationshipService(f.registry, f.uow, f.observer)
	f.board = NewBoardService(f.projects, f.issues, f.registry)

	f.project = testutil.NewTestProject("Platform", testutil.WithKey("PROJ"))
	require.NoError(t, f.projects.Create(context.Background(), f.project))
	return f
}

// useBugWorkflow installs testutil.BugWorkflowConfig on the fixture project.
func (f *fixture) useBugWorkflow(t *testing.T) {
	t.Helper()
	require.NoError(t, f.configs.Replace(context.Background(), f.project.ID, testutil.BugWorkflowConfig()))
}

func (f *fixture) newIssue(t *testing.T, title, issueType string) *domain.Issue {
	t.Helper()
	issue, err := f.issueSvc.Create(context.Background(), contract.CreateIssueRequest{
		ProjectID: f.project.ID,
		Title:     title,
		Type:      issueType,
	})
	require.NoError(t, err)
	return issue
}

func (f *fixture) reload(t *testing.T, id string) *domain.Issue {
	t.Helper()
	issue, err := f.issues.GetByID(context.Background(), id)
	require.NoError(t, err)
	return issue
}

func (f *fixture) makeParent(t *testing.T, child, parent *domain.Issue) {
	t.Helper()
	_, err := f.rel.Link(context.Background(), parentReq(child, parent))
	require.NoError(t, err)
}

func parentReq(child, parent *domain.Issue) contract.LinkRequest {
	return contract.LinkRequest{
		IssueID:     domain.IssueRef{ID: child.ID},
		TargetID:    domain.IssueRef{ID: parent.ID},
		ParentChild: domain.RelationParent,
	}
}

func linkReq(a, b *domain.Issue, t domain.LinkType) contract.LinkRequest {
	return contract.LinkRequest{
		IssueID:  domain.IssueRef{ID: a.ID},
		TargetID: domain.IssueRef{ID: b.ID},
		LinkType: t,
	}
}
