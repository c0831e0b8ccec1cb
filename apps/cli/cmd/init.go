package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an ordercheck config file",
	Long: `Create .ordercheck.yaml in the current directory with the default
settings. Values in the file may reference environment variables as $VAR.

Examples:
  ordercheck init
  ordercheck init --force`,
	Args: noArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return writeInitConfig(cmd, cwd)
}

func writeInitConfig(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, config.ConfigFilenames[0])

	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{"User-Agent": "ordercheck/" + version}

	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'ordercheck run' to check the service at %s.\n", cfg.BaseURL)
	return nil
}
