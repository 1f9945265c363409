package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/duncanfisher/patchpilot/internal/config"
	"github.com/duncanfisher/patchpilot/internal/logging"
	"github.com/duncanfisher/patchpilot/internal/server"
)

// serveCmd runs the webhook server until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the issue-tracker webhook server",
	Long: `Start the HTTP server that accepts Jira issue webhooks on
POST /webhook/jira and runs the fix pipeline for each accepted ticket.

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg.Server.Addr, p)

		logging.Info("starting webhook server",
			"addr", cfg.Server.Addr,
			"repository", cfg.GitHub.Repository)

		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
