package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexanderramin/issueflow/internal/app"
	"github.com/alexanderramin/issueflow/internal/cli/formatter"
	"github.com/alexanderramin/issueflow/internal/config"
	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/logging"
	"github.com/spf13/cobra"
)

// annotationServer marks long-running commands whose use cases are always
// logged.
const annotationServer = "issueflow/server"

// App holds the wired services used by CLI commands. When Services is nil
// the root command opens the configured database before any subcommand
// runs; tests set Services directly.
type App struct {
	*app.Services

	Config *config.Config
	Logger *slog.Logger

	// IsInteractive reports whether prompts and the board TUI may be used.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh confirm form.
	Confirm func(title string) (bool, error)

	closers []io.Closer
}

// NewRootCmd creates the top-level "issueflow" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "issueflow",
		Short:         "Issue relationships, workflows and boards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bootstrap(cmd, configFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default ./issueflow.yaml, then ~/.issueflow/config.yaml)")
	pf.String("db", "", "SQLite database path")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("log-file", "", "Write logs to a rotating file instead of stderr")

	root.AddCommand(
		newProjectCmd(a),
		newIssueCmd(a),
		newLinkCmd(a),
		newUnlinkCmd(a),
		newReparentCmd(a),
		newHierarchyCmd(a),
		newSubtaskCmd(a),
		newBoardCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
	)

	return root
}

func (a *App) bootstrap(cmd *cobra.Command, configFile string) error {
	if a.Services != nil {
		return nil
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closer)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.closers = append(a.closers, database)

	// One-shot commands stay quiet on stderr unless asked otherwise.
	useCaseLogger := logger
	if !isServerCmd(cmd) && cfg.Log.File == "" && !strings.EqualFold(cfg.Log.Level, "debug") {
		useCaseLogger = nil
	}

	a.Config = cfg
	a.Logger = logger
	a.Services = app.Wire(database, useCaseLogger, db.WithBusyRetry(cfg.BusyTimeout))
	logger.Debug("bootstrapped", "db", cfg.DBPath, "config", cfg.Source)
	return nil
}

func isServerCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationServer]; ok {
			return true
		}
	}
	return false
}

// Close releases the database and log file opened by the root command.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.Logger
}

func (a *App) settings() *config.Config {
	if a.Config == nil {
		return &config.Config{}
	}
	return a.Config
}

// confirm asks before a destructive action. Non-interactive sessions must
// pass --yes.
func (a *App) confirm(title string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	if !a.interactive() {
		return false, fmt.Errorf("%s: refusing without --yes in a non-interactive session", title)
	}
	return promptConfirm(title)
}

// statusLookup resolves status names against the project's statuses so
// output carries display names and colors.
func (a *App) statusLookup(ctx context.Context, projectRef string) formatter.StatusLookup {
	cfg, err := a.Projects.Config(ctx, projectRef)
	if err != nil {
		cfg = a.Registry.DefaultConfig()
	}
	all := a.Registry.AllStatuses(cfg)
	return func(name string) domain.Status {
		for _, s := range all {
			if s.Name == name {
				return s
			}
		}
		return domain.Status{Name: name, DisplayName: name}
	}
}
