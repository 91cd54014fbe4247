package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/bnema/batchdl/internal/infrastructure/xdg"
)

const dirPerm = 0o755

var (
	genDocsOutputDir string
	genDocsFormat    string
)

var genDocsCmd = &cobra.Command{
	Use:   "gen-docs",
	Short: "Generate documentation from CLI commands",
	Long: `Generate man pages or markdown from the command definitions.

By default, man pages are installed to ~/.local/share/man/man1/ so they
are immediately available via 'man batchdl'.

Examples:
  batchdl gen-docs                      # Install man pages
  batchdl gen-docs --format markdown    # Generate markdown docs in ./docs
  batchdl gen-docs --output ./man       # Generate to local directory`,
	Hidden: true,
	RunE:   runGenDocs,
}

func init() {
	rootCmd.AddCommand(genDocsCmd)
	genDocsCmd.Flags().StringVarP(&genDocsOutputDir, "output", "o", "", "Output directory for generated docs")
	genDocsCmd.Flags().StringVarP(&genDocsFormat, "format", "f", "man", "Output format: man, markdown")
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	outputDir := genDocsOutputDir
	if outputDir == "" {
		switch genDocsFormat {
		case "man":
			manDir, err := xdg.New().ManDir()
			if err != nil {
				return fmt.Errorf("resolve man directory: %w", err)
			}
			outputDir = manDir
		case "markdown":
			outputDir = "./docs"
		}
	}

	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Reproducible output
	rootCmd.DisableAutoGenTag = true

	var ext string
	switch genDocsFormat {
	case "man":
		header := &doc.GenManHeader{
			Title:   "BATCHDL",
			Section: "1",
			Source:  "batchdl " + buildInfo.Version,
			Manual:  "batchdl Manual",
			Date:    func() *time.Time { t := time.Now(); return &t }(),
		}
		if err := doc.GenManTree(rootCmd, header, outputDir); err != nil {
			return fmt.Errorf("generate man pages: %w", err)
		}
		ext = ".1"
	case "markdown":
		if err := doc.GenMarkdownTree(rootCmd, outputDir); err != nil {
			return fmt.Errorf("generate markdown docs: %w", err)
		}
		ext = ".md"
	default:
		return fmt.Errorf("unsupported format %q (use: man, markdown)", genDocsFormat)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated %s docs in %s\n", genDocsFormat, outputDir)

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil // Non-fatal
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ext {
			fmt.Fprintf(out, "  - %s\n", e.Name())
		}
	}
	return nil
}
