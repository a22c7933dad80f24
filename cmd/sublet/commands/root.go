package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sublet/internal/config"
	"sublet/internal/middleware"
	"sublet/internal/observability"
)

var cfg *config.Config

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:          "sublet",
		Short:        "Student sublet marketplace API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			cfg = loaded

			// stdout carries command output; logs go to stderr
			middleware.Logger = middleware.NewLogger(os.Stderr, cfg.Env)
			slog.SetDefault(middleware.Logger)
			observability.SetGlobalLogger(middleware.Logger)
			return nil
		},
	}

	root.AddCommand(serveCmd(), seedCmd(), statsCmd())
	return root.Execute()
}
