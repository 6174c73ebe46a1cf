package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/binary-blog/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Builds the site and serves it over HTTP",
		Long: `Builds the content tree once, then listens on server.port until
SIGINT or SIGTERM, draining in-flight requests on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := resolveEnv(cmd.Context())
			if err != nil {
				return err
			}
			a, err := app.Build(cmd.Context(), e.cfg, e.sources, e.logger)
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			return a.Run(cmd.Context())
		},
	}
}
