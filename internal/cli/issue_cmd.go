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

func newIssueCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issue",
		Aliases: []string{"i"},
		Short:   "Manage issues",
	}

	cmd.AddCommand(
		newIssueAddCmd(a),
		newIssueShowCmd(a),
		newIssueListCmd(a),
		newIssueMoveCmd(a),
		newIssueTransitionsCmd(a),
		newIssueEditCmd(a),
		newIssueDeleteCmd(a),
	)

	return cmd
}

func newIssueAddCmd(a *App) *cobra.Command {
	var issueType, status, description string

	cmd := &cobra.Command{
		Use:   "add PROJECT TITLE",
		Short: "Create a top-level issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.EqualFold(issueType, domain.TypeSubtask) {
				return errors.New("use `issueflow subtask PARENT TITLE` to create subtasks")
			}
			issue, err := a.Issues.Create(cmd.Context(), contract.CreateIssueRequest{
				ProjectID:   args[0],
				Title:       args[1],
				Type:        issueType,
				Status:      status,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s [%s]\n", issue.Type, issue.Key, issue.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&issueType, "type", "t", "", "Issue type (default task)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default: the workflow default)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")

	return cmd
}

func newIssueShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ISSUE",
		Short: "Show issue details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			issue, err := a.Issues.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatIssue(issue, a.statusLookup(ctx, issue.ProjectID)))
			return nil
		},
	}
}

func newIssueListCmd(a *App) *cobra.Command {
	var status, issueType string

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List a project's issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			issues, err := a.Issues.ListByProject(ctx, args[0])
			if err != nil {
				return err
			}

			filtered := issues[:0]
			for _, i := range issues {
				if status != "" && i.Status != status {
					continue
				}
				if issueType != "" && i.Type != issueType {
					continue
				}
				filtered = append(filtered, i)
			}
			if len(filtered) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No issues found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatIssueList(filtered, a.statusLookup(ctx, args[0])))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only issues in this status")
	cmd.Flags().StringVar(&issueType, "type", "", "Only issues of this type")

	return cmd
}

func newIssueMoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move ISSUE STATUS",
		Short: "Transition an issue to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			issue, err := a.Issues.Transition(ctx, args[0], args[1])
			if err != nil {
				var te *domain.TransitionError
				if errors.As(err, &te) {
					return errors.New(te.Reason())
				}
				return err
			}
			lookup := a.statusLookup(ctx, issue.ProjectID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", issue.Key, formatter.StatusPill(lookup(issue.Status)))
			return nil
		},
	}
}

func newIssueTransitionsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "transitions ISSUE",
		Short: "List the statuses an issue may move to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			issue, err := a.Issues.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			targets, err := a.Boards.DropTargets(ctx, issue.ID)
			if err != nil {
				return err
			}
			cfg, err := a.Projects.Config(ctx, issue.ProjectID)
			if err != nil {
				return err
			}

			lookup := a.statusLookup(ctx, issue.ProjectID)
			var rows [][]string
			for _, s := range a.Registry.AllStatuses(cfg) {
				if !targets[s.Name] {
					continue
				}
				mark := ""
				if s.Name == issue.Status {
					mark = "current"
				}
				rows = append(rows, []string{formatter.StatusPill(lookup(s.Name)), formatter.Dim(mark)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderTable([]string{"STATUS", ""}, rows))
			return nil
		},
	}
}

func newIssueEditCmd(a *App) *cobra.Command {
	var title, description, status string

	cmd := &cobra.Command{
		Use:   "edit ISSUE",
		Short: "Change an issue's title, description or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.UpdateIssueRequest{IssueID: args[0]}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			if req.IsEmpty() {
				return errors.New("nothing to change: pass --title, --description or --status")
			}

			issue, err := a.Issues.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", issue.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status")

	return cmd
}

func newIssueDeleteCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ISSUE",
		Short: "Delete an issue; its children become top-level issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			issue, err := a.Issues.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			ok, err := a.confirm(fmt.Sprintf("Delete %s %q?", issue.Key, issue.Title), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
				return nil
			}
			if err := a.Relationships.DeleteIssue(ctx, issue.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", issue.Key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
