package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIssueService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: "PROJ", Title: "  Set up CI  "})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeTask, first.Type)
	assert.Equal(t, "backlog", first.Status)
	assert.Equal(t, "Set up CI", first.Title)
	assert.Equal(t, "PROJ-1", first.Key)
	assert.NotEmpty(t, first.ID)

	second := f.newIssue(t, "Second", domain.TypeBug)
	assert.Equal(t, "PROJ-2", second.Key)

	got, err := f.issueSvc.Resolve(ctx, "proj-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID, "keys resolve case-insensitively")
}

func TestIssueService_CreateUsesConfiguredWorkflow(t *testing.T) {
	f := newFixture(t)
	f.useBugWorkflow(t)
	ctx := context.Background()

	bug, err := f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Crash", Type: domain.TypeBug, Status: "qa"})
	require.NoError(t, err)
	assert.Equal(t, "qa", bug.Status)

	_, err = f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Crash", Type: domain.TypeBug, Status: "analysis_ready"})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestIssueService_CreateTypeRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.configs.Replace(ctx, f.project.ID, &domain.ProjectConfig{
		IssueTypes: []domain.IssueTypeDef{
			{Name: "incident", Workflow: []string{"triage", "mitigated", "resolved"}, IsActive: true},
			{Name: "legacy_ticket", Workflow: []string{"open", "closed"}, IsActive: false},
		},
	}))

	incident, err := f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Outage", Type: "incident"})
	require.NoError(t, err)
	assert.Equal(t, "triage", incident.Status, "first workflow member without a default flag")

	_, err = f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Old", Type: "legacy_ticket"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "inactive types accept no new issues")

	_, err = f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Spike", Type: "spike"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	story, err := f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Story", Type: domain.TypeStory})
	require.NoError(t, err, "default vocabulary stays available")
	assert.Equal(t, "backlog", story.Status)
}

func TestIssueService_CreateRejectsRetiredDefaultType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.configs.Replace(ctx, f.project.ID, &domain.ProjectConfig{
		IssueTypes: []domain.IssueTypeDef{
			{Name: domain.TypeBug, Workflow: []string{"open", "fixed"}, IsActive: false},
			{Name: domain.TypeTask, IsActive: true},
		},
	}))

	_, err := f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Crash", Type: domain.TypeBug})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "a configured inactive type overrides the default vocabulary")

	issues, err := f.issueSvc.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)

	_, err = f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: "Docs", Type: domain.TypeTask})
	require.NoError(t, err)
}

func TestIssueService_CreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: f.project.ID, Title: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.issueSvc.Create(ctx, contract.CreateIssueRequest{ProjectID: "NOPE", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssueService_TransitionMembershipOnly(t *testing.T) {
	f := newFixture(t)
	f.useBugWorkflow(t)
	ctx := context.Background()
	bug := f.newIssue(t, "Crash", domain.TypeBug)

	moved, err := f.issueSvc.Transition(ctx, bug.Key, "released")
	require.NoError(t, err, "workflow order is not a gate")
	assert.Equal(t, "released", moved.Status)
	assert.Equal(t, "released", f.reload(t, bug.ID).Status)

	ev := f.observer.last()
	assert.Equal(t, "transition-issue", ev.Name)
	assert.Equal(t, "backlog", ev.Fields["from_status"])

	moved, err = f.issueSvc.Transition(ctx, bug.ID, "backlog")
	require.NoError(t, err, "moving backwards is allowed")
	assert.Equal(t, "backlog", moved.Status)
}

func TestIssueService_TransitionRejected(t *testing.T) {
	f := newFixture(t)
	f.useBugWorkflow(t)
	ctx := context.Background()
	bug := f.newIssue(t, "Crash", domain.TypeBug)

	_, err := f.issueSvc.Transition(ctx, bug.ID, "acceptance")
	require.ErrorIs(t, err, domain.ErrIllegalTransition)

	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, []string{"backlog", "development", "qa", "released"}, te.ValidStatuses)
	assert.Equal(t, "bug cannot transition to acceptance; valid statuses: backlog, development, qa, released", te.Reason())
	assert.Equal(t, "backlog", f.reload(t, bug.ID).Status, "nothing persisted")
}

func TestIssueService_TransitionNoOpSkipsWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.newIssue(t, "Task", domain.TypeTask)

	got, err := f.issueSvc.Transition(ctx, task.ID, "backlog")
	require.NoError(t, err)
	assert.Equal(t, "backlog", got.Status)
	assert.Equal(t, false, f.observer.last().Fields["changed"])
}

func TestIssueService_CanTransition(t *testing.T) {
	f := newFixture(t)
	f.useBugWorkflow(t)
	bug := f.newIssue(t, "Crash", domain.TypeBug)

	d, err := f.issueSvc.CanTransition(context.Background(), bug.ID, "qa")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = f.issueSvc.CanTransition(context.Background(), bug.ID, "acceptance")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)

	_, err = f.issueSvc.CanTransition(context.Background(), "missing", "qa")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssueService_UpdateFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.newIssue(t, "Draft", domain.TypeTask)

	got, err := f.issueSvc.Update(ctx, contract.UpdateIssueRequest{
		IssueID:     task.ID,
		Title:       strPtr("Final title"),
		Description: strPtr("details"),
		Status:      strPtr("development"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Final title", got.Title)

	stored := f.reload(t, task.ID)
	assert.Equal(t, "Final title", stored.Title)
	assert.Equal(t, "details", stored.Description)
	assert.Equal(t, "development", stored.Status)
	assert.Equal(t, "update-issue", f.observer.last().Name)
}

func TestIssueService_UpdateValidatesBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.newIssue(t, "Draft", domain.TypeTask)

	_, err := f.issueSvc.Update(ctx, contract.UpdateIssueRequest{
		IssueID: task.ID,
		Title:   strPtr("Should not stick"),
		Status:  strPtr("qa"),
	})
	require.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, "Draft", f.reload(t, task.ID).Title)

	_, err = f.issueSvc.Update(ctx, contract.UpdateIssueRequest{IssueID: task.ID, Title: strPtr("   ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.issueSvc.Update(ctx, contract.UpdateIssueRequest{IssueID: task.ID, Status: strPtr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIssueService_ListByProject(t *testing.T) {
	f := newFixture(t)
	a := f.newIssue(t, "A", domain.TypeTask)
	b := f.newIssue(t, "B", domain.TypeBug)

	issues, err := f.issueSvc.ListByProject(context.Background(), "PROJ")
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, a.ID, issues[0].ID)
	assert.Equal(t, b.ID, issues[1].ID)

	_, err = f.issueSvc.ListByProject(context.Background(), "ZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
