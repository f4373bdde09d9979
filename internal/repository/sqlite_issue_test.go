package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTestSetup(t *testing.T) (*SQLiteIssueRepo, *domain.Project) {
	t.Helper()
	database := testutil.NewTestDB(t)
	proj := testutil.NewTestProject("Issues", testutil.WithKey("ISS"))
	require.NoError(t, NewSQLiteProjectRepo(database).Create(context.Background(), proj))
	return NewSQLiteIssueRepo(database), proj
}

func TestIssueRepo_CreateAndGet(t *testing.T) {
	repo, proj := issueTestSetup(t)
	ctx := context.Background()

	i := testutil.NewTestIssue(proj, "Crash on save",
		testutil.WithIssueType(domain.TypeBug),
		testutil.WithStatus("qa"),
		testutil.WithDescription("stack trace attached"),
	)
	require.NoError(t, repo.Create(ctx, i))

	got, err := repo.GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, i.Key, got.Key)
	assert.Equal(t, "Crash on save", got.Title)
	assert.Equal(t, "stack trace attached", got.Description)
	assert.Equal(t, domain.TypeBug, got.Type)
	assert.Equal(t, "qa", got.Status)
	assert.Nil(t, got.Parent)

	byKey, err := repo.GetByKey(ctx, i.Key)
	require.NoError(t, err)
	assert.Equal(t, i.ID, byKey.ID)
}

func TestIssueRepo_GetMissing(t *testing.T) {
	repo, _ := issueTestSetup(t)
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByKey(context.Background(), "ISS-999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueRepo_ParentAndChildren(t *testing.T) {
	repo, proj := issueTestSetup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	parent := testutil.NewTestIssue(proj, "Parent", testutil.WithIssueType(domain.TypeStory))
	c1 := testutil.NewTestIssue(proj, "Child 1")
	c2 := testutil.NewTestIssue(proj, "Child 2")
	for _, i := range []*domain.Issue{parent, c1, c2} {
		require.NoError(t, repo.Create(ctx, i))
	}

	require.NoError(t, repo.SetParent(ctx, c2.ID, parent.ID, now))
	require.NoError(t, repo.SetParent(ctx, c1.ID, parent.ID, now))

	children, err := repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, c1.ID, children[0].ID, "children ordered by creation")
	assert.Equal(t, c2.ID, children[1].ID)
	assert.Equal(t, parent.ID, children[0].ParentID())

	n, err := repo.OrphanChildren(ctx, parent.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	children, err = repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, children)

	got, err := repo.GetByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.False(t, got.HasParent())
}

func TestIssueRepo_SetParentMissingIssue(t *testing.T) {
	repo, _ := issueTestSetup(t)
	err := repo.SetParent(context.Background(), "missing", "", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueRepo_UpdateDoesNotTouchParent(t *testing.T) {
	repo, proj := issueTestSetup(t)
	ctx := context.Background()

	parent := testutil.NewTestIssue(proj, "Parent")
	child := testutil.NewTestIssue(proj, "Child", testutil.WithParent(parent.ID))
	require.NoError(t, repo.Create(ctx, parent))
	require.NoError(t, repo.Create(ctx, child))

	child.Parent = nil
	child.Status = "development"
	child.Title = "Child renamed"
	require.NoError(t, repo.Update(ctx, child))

	got, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "development", got.Status)
	assert.Equal(t, "Child renamed", got.Title)
	assert.Equal(t, parent.ID, got.ParentID(), "Update leaves parent_id alone")
}

func TestIssueRepo_ListByProjectAndDelete(t *testing.T) {
	repo, proj := issueTestSetup(t)
	ctx := context.Background()

	a := testutil.NewTestIssue(proj, "A")
	b := testutil.NewTestIssue(proj, "B")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	list, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)

	list, err = repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
