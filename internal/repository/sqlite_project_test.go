package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_CreateAndGet(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	p := testutil.NewTestProject("Alpha", testutil.WithKey("ALPHA"))
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", got.Key)
	assert.Equal(t, "Alpha", got.Name)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	byKey, err := repo.GetByKey(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byKey.ID, "key lookup is case-insensitive on input")
}

func TestProjectRepo_GetMissing(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepo_DuplicateKey(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestProject("One", testutil.WithKey("DUP"))))
	assert.Error(t, repo.Create(ctx, testutil.NewTestProject("Two", testutil.WithKey("DUP"))))
}

func TestProjectRepo_ListUpdateDelete(t *testing.T) {
	repo := NewSQLiteProjectRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	b := testutil.NewTestProject("Beta", testutil.WithKey("BETA"))
	a := testutil.NewTestProject("Alpha", testutil.WithKey("ALPHA"))
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ALPHA", list[0].Key, "ordered by key")

	b.Name = "Beta Renamed"
	require.NoError(t, repo.Update(ctx, b))
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beta Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, b.ID))
	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)
}
