// Package command contains the CLI command constructors.
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ayush/blog-api/internal/config"
	"github.com/ayush/blog-api/internal/logging"
)

// RootCommand instantiates the root command, with all sub-commands bound.
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "blog-api [command] [flags]",
		Short:        "JSON API for blog posts and users",
		Version:      version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := logging.New(cfg.LogLevel)
			logger.DebugContext(cmd.Context(), "configuration loaded",
				slog.String("port", cfg.Port),
				slog.String("mongo_db", cfg.MongoDB),
				slog.Bool("postgres", cfg.PostgresDSN != ""),
				slog.Bool("in_memory", cfg.InMemory),
			)
			slog.SetDefault(logger)
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}

	cmd.AddCommand(
		serveCommand(),
		userCommand(),
	)

	return cmd
}
