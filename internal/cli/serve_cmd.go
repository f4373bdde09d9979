package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/issueflow/internal/api"
	"github.com/alexanderramin/issueflow/internal/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Long: "Run the REST API. With --watch the given workflow file is imported " +
			"at startup and again whenever it changes.",
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			annotationServer: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().String("watch", "", "Workflow config file to import and watch")
	cmd.Flags().String("project", "", "Project the watched file applies to (default: the file's project key)")

	return cmd
}

// runServe runs the API and the optional config watcher until ctx ends or
// either fails.
func runServe(ctx context.Context, a *App) error {
	cfg := a.settings()

	var opts []api.Option
	if cfg.HTTP.Addr != "" {
		opts = append(opts, api.WithAddr(cfg.HTTP.Addr))
	}
	if cfg.HTTP.ShutdownTimeout > 0 {
		opts = append(opts, api.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout))
	}
	srv := api.NewServer(a.Services, a.logger(), opts...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(ctx) })
	if cfg.WatchFile != "" {
		g.Go(func() error { return runConfigWatch(ctx, a, cfg.WatchProject, cfg.WatchFile) })
	}
	return g.Wait()
}

func newMCPCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the engine as MCP tools over stdio",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annotationServer: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger().Info("mcp server starting", "version", mcp.Version)
			return mcp.Serve(mcp.NewServer(a.Services))
		},
	}
}
