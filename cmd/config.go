package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yhkl-dev/rainplayer/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the rainplayer configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		path := cfgFile
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			path, err = defaultConfigPath()
			if err != nil {
				return err
			}
		}

		if err := writeDefaultConfig(path, force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rainplayer", "config.toml"), nil
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	return config.Write(path, config.DefaultConfig())
}
