package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/batchdl/internal/cli/styles"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"about"},
	Short:   "Show version and build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), buildInfo.Version)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.NewAboutRenderer(styles.NewTheme()).Render(buildInfo))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "print the version only")
}
