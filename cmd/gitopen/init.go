// SPDX-License-Identifier: MIT
package gitopen

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitopen/internal/config"
	"github.com/skaphos/gitopen/internal/vcs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a gitopen configuration",
	Long:  "Writes a default gitopen config file to the global config directory, or to .gitopen.yaml in the current directory with --local.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force := getBoolFlag(cmd, "force")
		local := getBoolFlag(cmd, "local")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		cfgPath, err := config.InitConfigPath(configOverride(cmd), cwd, local)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil {
			if !force {
				return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
			}
			if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove existing config %q: %w", cfgPath, err)
			}
		}

		cfg := config.DefaultConfig()
		if flagAdapter != "" {
			name, err := vcs.ParseAdapterSelection(flagAdapter)
			if err != nil {
				return err
			}
			cfg.Defaults.Adapter = name
		}
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")
	initCmd.Flags().Bool("local", false, "write .gitopen.yaml in the current directory")

	rootCmd.AddCommand(initCmd)
}
