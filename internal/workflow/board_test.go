package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_BucketsByStatus(t *testing.T) {
	p := NewProjector(NewRegistry(nil))
	issues := []*domain.Issue{
		{ID: "a", Type: "bug", Status: "qa"},
		{ID: "b", Type: "task", Status: "backlog"},
		{ID: "c", Type: "task", Status: "backlog"},
		{ID: "d", Type: "task", Status: "released"},
	}

	b := p.Project(issues, bugProjectConfig())

	backlog, ok := b.Column("backlog")
	require.True(t, ok)
	require.Len(t, backlog.Issues, 2)
	assert.Equal(t, "b", backlog.Issues[0].ID, "input order preserved")
	assert.Equal(t, "c", backlog.Issues[1].ID)

	qa, ok := b.Column("qa")
	require.True(t, ok, "configured status gets a column")
	assert.Len(t, qa.Issues, 1)

	assert.Len(t, b.ByStatus["released"], 1)
	assert.Empty(t, b.Unplaced)
}

func TestProject_EmptyColumnsStillListed(t *testing.T) {
	b := NewProjector(NewRegistry(nil)).Project(nil, nil)
	assert.Equal(t, Names(DefaultStatuses()), columnNames(b))
	for _, c := range b.Columns {
		assert.Empty(t, c.Issues)
	}
}

func TestProject_UnknownStatusIsUnplaced(t *testing.T) {
	b := NewProjector(NewRegistry(nil)).Project([]*domain.Issue{
		{ID: "stale", Type: "task", Status: "wont_fix"},
	}, nil)

	require.Len(t, b.Unplaced, 1)
	assert.Equal(t, "stale", b.Unplaced[0].ID)
	_, ok := b.ByStatus["wont_fix"]
	assert.False(t, ok)
}

func TestIsValidDropTarget(t *testing.T) {
	p := NewProjector(NewRegistry(staticProvider{"p1": bugProjectConfig()}))
	ctx := context.Background()
	issue := bugIssue("backlog")

	assert.True(t, p.IsValidDropTarget(ctx, issue, "qa"))
	assert.True(t, p.IsValidDropTarget(ctx, issue, "backlog"), "drop on own column")
	assert.False(t, p.IsValidDropTarget(ctx, issue, "analysis_ready"))
	assert.False(t, p.IsValidDropTarget(ctx, issue, "archived"))
}

func TestIsValidDropTarget_ConfigErrorIsFalse(t *testing.T) {
	p := NewProjector(NewRegistry(ConfigProviderFunc(func(context.Context, string) (*domain.ProjectConfig, error) {
		return nil, errors.New("unavailable")
	})))
	assert.False(t, p.IsValidDropTarget(context.Background(), bugIssue("backlog"), "qa"))
}

func TestDropTargets(t *testing.T) {
	p := NewProjector(NewRegistry(staticProvider{"p1": bugProjectConfig()}))
	targets, err := p.DropTargets(context.Background(), bugIssue("development"))
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		"backlog":        true,
		"analysis_ready": false,
		"development":    true,
		"acceptance":     false,
		"released":       true,
		"qa":             true,
		"open":           false,
		"closed":         false,
	}, targets)
}

func columnNames(b Board) []string {
	out := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		out[i] = c.Status.Name
	}
	return out
}
