package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserd/internal/config"
	"github.com/neboloop/browserd/internal/defaults"
	"github.com/neboloop/browserd/internal/logging"
)

// Shared CLI flags (used across multiple command files)
var (
	cfgFile string
	verbose bool
)

// Loaded by the root command before any subcommand runs.
var (
	appConfig *config.Config
	dataDir   string
)

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "browserd",
		Short: "browserd - managed Chromium for automation",
		Long: `browserd launches a Chromium-family browser with a dedicated, branded
profile and remote debugging enabled, and exposes it over a local control API.

Just type 'browserd' to run the control server.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <data dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(StartCmd())
	rootCmd.AddCommand(StopCmd())
	rootCmd.AddCommand(StatusCmd())
	rootCmd.AddCommand(TabsCmd())
	rootCmd.AddCommand(ScreenshotCmd())
	rootCmd.AddCommand(ResetConfigCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command, args []string) error {
	dir, err := defaults.EnsureDataDir()
	if err != nil {
		return err
	}
	dataDir = dir

	path := cfgFile
	if path == "" {
		path = filepath.Join(dataDir, defaults.ConfigFile)
	}
	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appConfig = &c

	level := c.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.Init(level, c.Logging.Development)
}
