// Package cmd defines and implements the CLI commands for the binary-blog executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/binary-blog/internal/app"
	"github.com/JakeFAU/binary-blog/internal/config"
	"github.com/JakeFAU/binary-blog/internal/logging"
)

// envKeyType is the key for storing the command environment in the context.
type envKeyType string

const envKey envKeyType = "env"

// env carries what every subcommand needs.
type env struct {
	cfg     config.Config
	logger  *zap.Logger
	sources app.Sources
}

// loadSources is the site source factory. It's a variable so tests can build
// from an in-memory corpus.
var loadSources = app.EmbeddedSources

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "binary-blog",
		Short: "Serves a fixed, embedded blog from memory.",
		Long: `binary-blog compiles the posts embedded in the binary into a tree of
pre-rendered, pre-compressed resources at startup and serves it with
conditional GET and deflate encoding. The same tree can be listed or
exported to a directory or a GCS bucket.`,
		Version:       config.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Runs before any subcommand: load config and logger, then inject them.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(logging.Options{
				Development: cfg.Logging.Development,
				Service:     "binary-blog",
				Version:     cfg.Site.BuildVersion,
			})
			if err != nil {
				return fmt.Errorf("logger init failed: %w", err)
			}
			zap.ReplaceGlobals(logger)
			src, err := loadSources()
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), envKey, &env{cfg: cfg, logger: logger, sources: src})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e, ok := cmd.Context().Value(envKey).(*env); ok && e != nil {
				_ = e.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(newServeCmd(), newListCmd(), newExportCmd())
	return cmd
}

func resolveEnv(ctx context.Context) (*env, error) {
	e, ok := ctx.Value(envKey).(*env)
	if !ok || e == nil {
		return nil, errors.New("command environment not initialized")
	}
	return e, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger, logErr := logging.New(logging.Options{})
		if logErr != nil {
			fmt.Fprintf(os.Stderr, "command execution failed: %v\n", err)
			os.Exit(1)
		}
		logger.Fatal("command execution failed", zap.Error(err))
	}
}
