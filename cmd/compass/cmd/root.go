// Package cmd - compass CLI commands
package cmd

import (
	"fmt"

	"github.com/evdnx/gocompass/config"
	"github.com/evdnx/gocompass/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	cfg config.Config
	log logger.Logger = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Relative strength / momentum compass for a basket of assets",
	Long: `Compass ranks every asset against the equal-weight basket benchmark and
places it in one of four quadrants: leading, weakening, lagging, improving.

Commands:
    run         compute once and write the JSON document
    watch       recompute on a cron schedule
    registry    list the tracked assets
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync(log)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file (defaults plus .env / COMPASS_* overrides when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(registryCmd)
}

// initConfig loads configuration and builds the process logger. Every log
// line of one invocation carries the same run_id.
func initConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	l, err := logger.New(loaded.Log)
	if err != nil {
		return err
	}
	cfg = loaded
	log = logger.With(l, logger.String("run_id", uuid.NewString()))
	return nil
}
