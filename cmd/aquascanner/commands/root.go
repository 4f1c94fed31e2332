package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"AquaScanner/internal/app"
	"AquaScanner/internal/config"
	"AquaScanner/internal/logging"
)

var (
	configPath  string
	application *app.Application
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "aquascanner",
	Short:         "aquascanner collects aquarium fish articles into a catalog and syncs it with the app data file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger = logging.New(cfg.Logging.Level)
		application, err = app.New(cfg, logger)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $AQUASCANNER_CONFIG)")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("command failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
