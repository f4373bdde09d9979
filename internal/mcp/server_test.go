package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alexanderramin/issueflow/internal/app"
	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/testutil"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*server.MCPServer, *app.Services) {
	t.Helper()
	svc := app.Wire(testutil.NewTestDB(t), nil)
	require.NoError(t, svc.Projects.Create(context.Background(), &domain.Project{Key: "PROJ", Name: "Platform"}))
	return NewServer(svc), svc
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func decodeResult[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, result.IsError, text(t, result))
	var v T
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &v))
	return v
}

func TestToolsRegistered(t *testing.T) {
	s, _ := setup(t)
	for _, name := range []string{
		"link_issues", "unlink_issues", "reparent_issue", "get_hierarchy",
		"create_issue", "create_subtask", "transition_issue", "delete_issue",
		"get_board", "get_project_config",
	} {
		assert.NotNil(t, s.GetTool(name), name)
	}
}

func TestLinkAndHierarchy(t *testing.T) {
	s, _ := setup(t)
	story := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "Story", "type": "story"}))
	task := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "Task"}))

	h := decodeResult[contract.Hierarchy](t, call(t, s, "link_issues", map[string]any{
		"issue_id":        task.Key,
		"target_issue_id": story.Key,
		"parent_child":    "parent",
	}))
	require.NotNil(t, h.Parent)
	assert.Equal(t, story.ID, h.Parent.ID)

	h = decodeResult[contract.Hierarchy](t, call(t, s, "link_issues", map[string]any{
		"issue_id":        story.ID,
		"target_issue_id": task.ID,
	}))
	require.Len(t, h.Linked, 1)
	assert.Equal(t, domain.LinkRelatesTo, h.Linked[0].LinkType, "link_type defaults to relates_to")

	h = decodeResult[contract.Hierarchy](t, call(t, s, "get_hierarchy", map[string]any{"issue_id": story.Key}))
	assert.Equal(t, []string{task.ID}, h.ChildIDs())

	h = decodeResult[contract.Hierarchy](t, call(t, s, "unlink_issues", map[string]any{
		"issue_id":        story.ID,
		"target_issue_id": task.ID,
	}))
	assert.Empty(t, h.Children)
	assert.Empty(t, h.Linked)
}

func TestLink_SelfIsToolError(t *testing.T) {
	s, _ := setup(t)
	issue := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "Solo"}))

	result := call(t, s, "link_issues", map[string]any{"issue_id": issue.ID, "target_issue_id": issue.ID})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "invalid relationship")
}

func TestReparent(t *testing.T) {
	s, _ := setup(t)
	a := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "A", "type": "story"}))
	b := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "B", "type": "story"}))
	c := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "C"}))

	decodeResult[contract.Hierarchy](t, call(t, s, "reparent_issue", map[string]any{"issue_id": c.ID, "parent_issue_id": a.ID}))
	h := decodeResult[contract.Hierarchy](t, call(t, s, "reparent_issue", map[string]any{"issue_id": c.ID, "parent_issue_id": b.ID}))
	require.NotNil(t, h.Parent)
	assert.Equal(t, b.ID, h.Parent.ID)

	h = decodeResult[contract.Hierarchy](t, call(t, s, "reparent_issue", map[string]any{"issue_id": c.ID}))
	assert.Nil(t, h.Parent)
}

func TestTransitionIssue(t *testing.T) {
	s, svc := setup(t)
	require.NoError(t, svc.Projects.ReplaceConfig(context.Background(), "PROJ", testutil.BugWorkflowConfig()))
	bug := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "Crash", "type": "bug"}))

	moved := decodeResult[domain.Issue](t, call(t, s, "transition_issue", map[string]any{"issue_id": bug.Key, "status": "qa"}))
	assert.Equal(t, "qa", moved.Status)

	result := call(t, s, "transition_issue", map[string]any{"issue_id": bug.Key, "status": "acceptance"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "valid statuses: backlog, development, qa, released")
}

func TestSubtaskAndDelete(t *testing.T) {
	s, svc := setup(t)
	story := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "Story", "type": "story"}))

	sub := decodeResult[domain.Issue](t, call(t, s, "create_subtask", map[string]any{"title": "Part", "parent_issue_id": story.Key}))
	assert.Equal(t, domain.TypeSubtask, sub.Type)
	assert.Equal(t, story.ID, sub.ParentID())

	result := call(t, s, "delete_issue", map[string]any{"issue_id": story.ID})
	require.False(t, result.IsError, text(t, result))

	orphan, err := svc.Issues.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.False(t, orphan.HasParent())

	result = call(t, s, "get_hierarchy", map[string]any{"issue_id": story.ID})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "not found")
}

func TestBoardAndConfig(t *testing.T) {
	s, _ := setup(t)
	issue := decodeResult[domain.Issue](t, call(t, s, "create_issue", map[string]any{"project_id": "PROJ", "title": "Task"}))

	board := decodeResult[contract.BoardView](t, call(t, s, "get_board", map[string]any{"project_id": "PROJ"}))
	card, col, ok := board.Find(issue.ID)
	require.True(t, ok)
	assert.Equal(t, "backlog", col)
	assert.Len(t, card.ValidDropTargets, 5)

	cfg := decodeResult[domain.ProjectConfig](t, call(t, s, "get_project_config", map[string]any{"project_id": "PROJ"}))
	assert.Len(t, cfg.Statuses, 5)

	result := call(t, s, "get_board", map[string]any{"project_id": "NOPE"})
	assert.True(t, result.IsError)
}
