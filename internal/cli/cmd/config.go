package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/batchdl/internal/cli/styles"
	"github.com/bnema/batchdl/internal/infrastructure/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show the effective configuration, create a default config file, or print its JSON schema.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration after applying defaults, the config file,
BATCHDL_* environment variables and flags.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and its JSON schema",
	RunE:  runConfigInit,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the config file",
	RunE:  runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSchemaCmd)
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	data, err := config.EncodeConfig(app.Config)
	if err != nil {
		return err
	}

	renderer := styles.NewConfigRenderer(app.Theme)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderer.RenderConfigInfo(app.ConfigFile))
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	renderer := styles.NewConfigRenderer(styles.NewTheme())
	out := cmd.OutOrStdout()

	path := configFile
	if path == "" {
		var err error
		if path, err = config.GetConfigFile(); err != nil {
			return err
		}
	}

	if err := config.WriteConfig(config.DefaultConfig(), path, configForce); err != nil {
		fmt.Fprint(out, renderer.RenderError(err))
		return err
	}
	fmt.Fprint(out, renderer.RenderWritten("Config", path))

	schemaPath := filepath.Join(filepath.Dir(path), "config.schema.json")
	if err := config.WriteSchemaFile(schemaPath); err != nil {
		return err
	}
	fmt.Fprint(out, renderer.RenderWritten("Schema", schemaPath))
	return nil
}

func runConfigSchema(cmd *cobra.Command, _ []string) error {
	data, err := config.GenerateSchema()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
