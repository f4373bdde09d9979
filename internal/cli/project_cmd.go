package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexanderramin/issueflow/internal/cli/formatter"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/importer"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(a),
		newProjectListCmd(a),
		newProjectDeleteCmd(a),
		newProjectConfigCmd(a),
	)

	return cmd
}

func newProjectAddCmd(a *App) *cobra.Command {
	var key, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{
				Key:  strings.ToUpper(strings.TrimSpace(key)),
				Name: name,
			}
			if err := a.Projects.Create(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s [%s]\n", p.Name, p.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Project key (2-10 uppercase letters or digits, e.g. PROJ)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectDeleteCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete PROJECT",
		Short: "Delete a project and all of its issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.Projects.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ok, err := a.confirm(fmt.Sprintf("Delete project %s and all its issues?", p.Key), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
				return nil
			}
			if err := a.Projects.Delete(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", p.Key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newProjectConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or replace a project's workflow configuration",
	}

	cmd.AddCommand(
		newProjectConfigShowCmd(a),
		newProjectConfigImportCmd(a),
		newProjectConfigWatchCmd(a),
	)

	return cmd
}

func newProjectConfigShowCmd(a *App) *cobra.Command {
	format := formatValue("table")

	cmd := &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show the effective workflow configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.Projects.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			cfg, err := a.Projects.Config(ctx, p.ID)
			if err != nil {
				return err
			}

			if format == "table" {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectConfig(cfg))
				return nil
			}
			f, err := importer.ParseFormat(string(format))
			if err != nil {
				return err
			}
			data, err := importer.Encode(importer.FromProjectConfig(p.Key, cfg), f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().Var(&format, "format", "Output format: table, yaml, toml or json")
	return cmd
}

func newProjectConfigImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import [PROJECT] FILE",
		Short: "Replace the configuration from a YAML, TOML or JSON file",
		Long: "Replace the project's statuses and issue types from a file. " +
			"Without PROJECT the file's own project key is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, path := splitRefAndFile(args)
			res, err := a.Import.ImportConfig(cmd.Context(), ref, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d statuses and %d issue types into %s\n",
				len(res.Config.Statuses), len(res.Config.IssueTypes), res.Project.Key)
			return nil
		},
	}
}

func newProjectConfigWatchCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [PROJECT] FILE",
		Short: "Import a configuration file and re-import it on every change",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ref, path := splitRefAndFile(args)
			return runConfigWatch(ctx, a, ref, path)
		},
	}
	cmd.Annotations = map[string]string{annotationServer: "true"}
	return cmd
}

// runConfigWatch imports path once and then on every change until ctx ends.
func runConfigWatch(ctx context.Context, a *App, ref, path string) error {
	logger := a.logger()
	reload := func(ctx context.Context) error {
		res, err := a.Import.ImportConfig(ctx, ref, path)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "config imported", "project", res.Project.Key,
			"statuses", len(res.Config.Statuses), "issue_types", len(res.Config.IssueTypes))
		return nil
	}
	if err := reload(ctx); err != nil {
		return err
	}

	opts := []importer.WatchOption{importer.WithLogger(logger)}
	if d := a.settings().WatchDebounce; d > 0 {
		opts = append(opts, importer.WithDebounce(d))
	}
	return importer.NewWatcher(path, reload, opts...).Run(ctx)
}

func splitRefAndFile(args []string) (ref, path string) {
	if len(args) == 2 {
		return args[0], args[1]
	}
	return "", args[0]
}
