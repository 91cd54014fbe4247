// Package cmd provides Cobra CLI commands for batchdl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/batchdl/internal/cli"
	"github.com/bnema/batchdl/internal/cli/styles"
	"github.com/bnema/batchdl/internal/domain/build"
	"github.com/bnema/batchdl/internal/infrastructure/config"
)

var (
	app        *cli.App
	buildInfo  build.Info
	configFile string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "batchdl",
		Short: "Download many files concurrently with live progress",
		Long: `batchdl - a concurrent batch file downloader.

Reads a list of URLs and downloads them in parallel into one directory,
with a live display of overall and per-file progress.

Features:
  - Bounded worker pool (--workers)
  - Collision-free file names: image.png, image_1.png, image_2.png, ...
  - Existing files are never overwritten
  - ANSI, log and full-screen TUI progress displays
  - TOML configuration with BATCHDL_* environment overrides

Use 'batchdl download <urls_file> [output_dir]' to start a batch.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initApp,
	}
)

// flagKeys maps command flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "logging.level",
	"workers":   "download.workers",
	"display":   "display.mode",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/batchdl/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}

func initApp(cmd *cobra.Command, _ []string) error {
	// Skip initialization for commands that don't need app context
	switch cmd.Name() {
	case "help", "completion", "gen-docs", "version", "schema", "init":
		return nil
	}

	mgr, err := config.NewManager(configFile)
	if err != nil {
		return err
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := mgr.Viper().BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	if err := mgr.Load(); err != nil {
		return err
	}

	app, err = cli.NewApp(mgr, buildInfo)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if app != nil {
		_ = app.Close()
	}
	if err != nil {
		fmt.Fprint(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func renderError(err error) string {
	theme := styles.NewTheme()
	if app != nil {
		theme = app.Theme
	}
	return styles.NewSummaryRenderer(theme).RenderError(err)
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
