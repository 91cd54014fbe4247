package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/batchdl/internal/application/usecase"
	"github.com/bnema/batchdl/internal/cli/styles"
	"github.com/bnema/batchdl/internal/domain/download"
	"github.com/bnema/batchdl/internal/infrastructure/xdg"
	"github.com/bnema/batchdl/internal/logging"
)

var downloadCmd = &cobra.Command{
	Use:     "download <urls_file> [output_dir]",
	Aliases: []string{"dl", "get"},
	Short:   "Download every URL listed in a file",
	Long: `Download every URL listed in urls_file (one per line, blank lines ignored)
into output_dir, using a bounded pool of concurrent workers.

File names come from the last path segment of each URL. When a name is
already taken, on disk or by another active download, a numeric suffix is
inserted before the extension. A URL without a path segment is saved as
"image" (see download.placeholder_name).

A failed download does not stop the others. The command exits non-zero
with the first failure once every download has finished.

output_dir defaults to $XDG_DOWNLOAD_DIR (or ~/Downloads).

Examples:
  batchdl download urls.txt ./images
  batchdl download urls.txt ./images --workers 16
  batchdl download urls.txt --display log > progress.log`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().IntP("workers", "w", usecase.DefaultWorkers, "number of concurrent downloads")
	downloadCmd.Flags().StringP("display", "d", "auto", "progress display: auto, ansi, log, tui")
}

func runDownload(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := logging.WithComponent(app.Context(), "download")

	urls, err := readURLList(args[0])
	if err != nil {
		return err
	}

	dest, err := destinationDir(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	display, err := app.NewDisplay(out)
	if err != nil {
		return err
	}

	start := time.Now()
	result, runErr := app.RunBatchUC.Execute(ctx, usecase.RunBatchInput{
		URLs:           urls,
		DestinationDir: dest,
		Workers:        app.Config.Download.Workers,
		Renderer:       display,
	})
	if closeErr := display.Close(); closeErr != nil {
		logging.FromContext(ctx).Debug().Err(closeErr).Msg("failed to close display")
	}

	summary := styles.NewSummaryRenderer(app.Theme)
	fmt.Fprint(out, summary.Render(result, dest, time.Since(start)))

	return runErr
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	urls, err := download.ParseURLList(f)
	if err != nil {
		return nil, fmt.Errorf("read url list %s: %w", path, err)
	}
	return urls, nil
}

func destinationDir(args []string) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}
	dir, err := xdg.New().DownloadDir()
	if err != nil {
		return "", fmt.Errorf("resolve download directory: %w", err)
	}
	return dir, nil
}
