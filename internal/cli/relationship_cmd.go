package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/issueflow/internal/cli/formatter"
	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/spf13/cobra"
)

func newLinkCmd(a *App) *cobra.Command {
	linkType := linkTypeValue(domain.LinkRelatesTo)
	var relation parentChildValue

	cmd := &cobra.Command{
		Use:   "link ISSUE TARGET",
		Short: "Link two issues, or make one the parent or child of the other",
		Long: "Record a typed link from ISSUE to TARGET. With --parent-child the " +
			"hierarchy is edited instead: \"parent\" makes TARGET the parent of ISSUE, " +
			"\"child\" makes TARGET a child of ISSUE.",
		Example: "  issueflow link PROJ-1 PROJ-2 --type blocks\n" +
			"  issueflow link PROJ-1 PROJ-3 --parent-child child",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.Relationships.Link(cmd.Context(), contract.LinkRequest{
				IssueID:     domain.IssueRef{ID: args[0]},
				TargetID:    domain.IssueRef{ID: args[1]},
				LinkType:    domain.LinkType(linkType),
				ParentChild: domain.ParentChild(relation),
			})
			if err != nil {
				return err
			}
			return printHierarchy(cmd, a, h)
		},
	}

	cmd.Flags().Var(&linkType, "type", "Link type: "+strings.Join(linkTypeNames(), ", "))
	cmd.Flags().Var(&relation, "parent-child", "Edit the hierarchy instead: parent or child")

	return cmd
}

func newUnlinkCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink ISSUE TARGET",
		Short: "Remove every link and parent relation between two issues",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.Relationships.Unlink(cmd.Context(), contract.UnlinkRequest{
				IssueID:  domain.IssueRef{ID: args[0]},
				TargetID: domain.IssueRef{ID: args[1]},
			})
			if err != nil {
				return err
			}
			return printHierarchy(cmd, a, h)
		},
	}
}

func newReparentCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reparent ISSUE [PARENT]",
		Short: "Move an issue under a new parent; omit PARENT to detach it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.ReparentRequest{IssueID: domain.IssueRef{ID: args[0]}}
			if len(args) == 2 {
				req.ParentID = domain.IssueRef{ID: args[1]}
			}
			h, err := a.Relationships.Reparent(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printHierarchy(cmd, a, h)
		},
	}
}

func newHierarchyCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "hierarchy ISSUE",
		Aliases: []string{"tree"},
		Short:   "Show an issue's parent, children and links",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.Relationships.Hierarchy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printHierarchy(cmd, a, h)
		},
	}
}

func newSubtaskCmd(a *App) *cobra.Command {
	var description, status string

	cmd := &cobra.Command{
		Use:   "subtask PARENT [TITLE]",
		Short: "Create a subtask under an issue",
		Long:  "Create a subtask under PARENT. In a terminal TITLE may be omitted to open a form.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parent, err := a.Issues.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			title := ""
			if len(args) == 2 {
				title = args[1]
			} else {
				if !a.interactive() {
					return errors.New("subtask title is required")
				}
				if err := subtaskForm(parent.DisplayKey(), &title, &description).Run(); err != nil {
					return err
				}
			}

			sub, err := a.Relationships.CreateSubtask(ctx, contract.SubtaskRequest{
				Title:       title,
				ParentID:    domain.IssueRef{ID: parent.ID},
				Description: description,
				Status:      status,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created subtask %s under %s\n", sub.Key, parent.DisplayKey())
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status")

	return cmd
}

func printHierarchy(cmd *cobra.Command, a *App, h *contract.Hierarchy) error {
	lookup := a.statusLookup(cmd.Context(), h.Issue.ProjectID)
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatHierarchy(h, lookup))
	return nil
}
