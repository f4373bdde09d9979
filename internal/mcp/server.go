// Package mcp exposes the issueflow engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/issueflow/internal/app"
	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// NewServer creates the MCP server with every issueflow tool registered.
func NewServer(svc *app.Services) *server.MCPServer {
	s := server.NewMCPServer("issueflow", Version)

	// Relationships
	s.AddTool(mcp.NewTool("link_issues",
		mcp.WithDescription("Relate two issues. With parent_child set the hierarchy is edited and link_type is ignored."),
		mcp.WithString("issue_id", mcp.Description("Issue id or key (e.g. PROJ-12)"), mcp.Required()),
		mcp.WithString("target_issue_id", mcp.Description("Target issue id or key"), mcp.Required()),
		mcp.WithString("link_type", mcp.Description("relates_to|blocks|is_blocked_by|duplicates|is_duplicated_by (defaults to relates_to)")),
		mcp.WithString("parent_child", mcp.Description("parent: target becomes the parent; child: target becomes a child")),
	), linkIssuesHandler(svc))

	s.AddTool(mcp.NewTool("unlink_issues",
		mcp.WithDescription("Remove every link and any parent/child edge between two issues."),
		mcp.WithString("issue_id", mcp.Description("Issue id or key"), mcp.Required()),
		mcp.WithString("target_issue_id", mcp.Description("Target issue id or key"), mcp.Required()),
	), unlinkIssuesHandler(svc))

	s.AddTool(mcp.NewTool("reparent_issue",
		mcp.WithDescription("Move an issue under a new parent, or detach it when parent_issue_id is empty."),
		mcp.WithString("issue_id", mcp.Description("Issue id or key"), mcp.Required()),
		mcp.WithString("parent_issue_id", mcp.Description("New parent id or key")),
	), reparentIssueHandler(svc))

	s.AddTool(mcp.NewTool("get_hierarchy",
		mcp.WithDescription("Get an issue with its parent, children and linked issues."),
		mcp.WithString("issue_id", mcp.Description("Issue id or key"), mcp.Required()),
	), getHierarchyHandler(svc))

	// Issues
	s.AddTool(mcp.NewTool("create_issue",
		mcp.WithDescription("Create a top-level issue in a project."),
		mcp.WithString("project_id", mcp.Description("Project id or key"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Issue title"), mcp.Required()),
		mcp.WithString("type", mcp.Description("Issue type (defaults to task)")),
		mcp.WithString("status", mcp.Description("Initial status (defaults to the workflow default)")),
		mcp.WithString("description", mcp.Description("Issue description")),
	), createIssueHandler(svc))

	s.AddTool(mcp.NewTool("create_subtask",
		mcp.WithDescription("Create a subtask under a parent issue."),
		mcp.WithString("title", mcp.Description("Subtask title"), mcp.Required()),
		mcp.WithString("parent_issue_id", mcp.Description("Parent issue id or key"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Subtask description")),
		mcp.WithString("status", mcp.Description("Initial status (defaults to the workflow default)")),
	), createSubtaskHandler(svc))

	s.AddTool(mcp.NewTool("transition_issue",
		mcp.WithDescription("Move an issue to another status of its type's workflow."),
		mcp.WithString("issue_id", mcp.Description("Issue id or key"), mcp.Required()),
		mcp.WithString("status", mcp.Description("Target status"), mcp.Required()),
	), transitionIssueHandler(svc))

	s.AddTool(mcp.NewTool("delete_issue",
		mcp.WithDescription("Delete an issue. Its children are orphaned and its links removed."),
		mcp.WithString("issue_id", mcp.Description("Issue id or key"), mcp.Required()),
	), deleteIssueHandler(svc))

	// Projects
	s.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Get the project board: one column per status with valid drop targets per issue."),
		mcp.WithString("project_id", mcp.Description("Project id or key"), mcp.Required()),
	), getBoardHandler(svc))

	s.AddTool(mcp.NewTool("get_project_config",
		mcp.WithDescription("Get a project's issue types and statuses."),
		mcp.WithString("project_id", mcp.Description("Project id or key"), mcp.Required()),
	), getProjectConfigHandler(svc))

	return s
}

// Serve runs s on stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func linkIssuesHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := contract.LinkRequest{
			IssueID:     domain.IssueRef{ID: mcp.ParseString(request, "issue_id", "")},
			TargetID:    domain.IssueRef{ID: mcp.ParseString(request, "target_issue_id", "")},
			ParentChild: domain.ParentChild(mcp.ParseString(request, "parent_child", "")),
		}
		if req.ParentChild == domain.RelationNone {
			req.LinkType = domain.LinkType(mcp.ParseString(request, "link_type", string(domain.LinkRelatesTo)))
		}
		h, err := svc.Relationships.Link(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(h)
	}
}

func unlinkIssuesHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		h, err := svc.Relationships.Unlink(ctx, contract.UnlinkRequest{
			IssueID:  domain.IssueRef{ID: mcp.ParseString(request, "issue_id", "")},
			TargetID: domain.IssueRef{ID: mcp.ParseString(request, "target_issue_id", "")},
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(h)
	}
}

func reparentIssueHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		h, err := svc.Relationships.Reparent(ctx, contract.ReparentRequest{
			IssueID:  domain.IssueRef{ID: mcp.ParseString(request, "issue_id", "")},
			ParentID: domain.IssueRef{ID: mcp.ParseString(request, "parent_issue_id", "")},
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(h)
	}
}

func getHierarchyHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		h, err := svc.Relationships.Hierarchy(ctx, mcp.ParseString(request, "issue_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(h)
	}
}

func createIssueHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issue, err := svc.Issues.Create(ctx, contract.CreateIssueRequest{
			ProjectID:   mcp.ParseString(request, "project_id", ""),
			Title:       mcp.ParseString(request, "title", ""),
			Type:        mcp.ParseString(request, "type", ""),
			Status:      mcp.ParseString(request, "status", ""),
			Description: mcp.ParseString(request, "description", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(issue)
	}
}

func createSubtaskHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issue, err := svc.Relationships.CreateSubtask(ctx, contract.SubtaskRequest{
			Title:       mcp.ParseString(request, "title", ""),
			ParentID:    domain.IssueRef{ID: mcp.ParseString(request, "parent_issue_id", "")},
			Description: mcp.ParseString(request, "description", ""),
			Status:      mcp.ParseString(request, "status", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(issue)
	}
}

func transitionIssueHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		issue, err := svc.Issues.Transition(ctx,
			mcp.ParseString(request, "issue_id", ""),
			mcp.ParseString(request, "status", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(issue)
	}
}

func deleteIssueHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ref := mcp.ParseString(request, "issue_id", "")
		if err := svc.Relationships.DeleteIssue(ctx, ref); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Issue %s deleted", ref)), nil
	}
}

func getBoardHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		board, err := svc.Boards.Board(ctx, mcp.ParseString(request, "project_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(board)
	}
}

func getProjectConfigHandler(svc *app.Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cfg, err := svc.Projects.Config(ctx, mcp.ParseString(request, "project_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(cfg)
	}
}
