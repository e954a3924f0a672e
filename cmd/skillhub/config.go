// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage skillhub configuration",
	Long: `Manage skillhub configuration.

Configuration is stored in:
  - Linux: ~/.config/skillhub/config.cue
  - macOS: ~/Library/Application Support/skillhub/config.cue
  - Windows: %APPDATA%\skillhub\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})
}

func showConfig(cmd *cobra.Command) error {
	keyStyle := RefStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(cmd.OutOrStdout())

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if fileExistsCheck(cfgPath) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Fprintln(cmd.OutOrStdout())

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyStyle.Render("registry_dir"), valueStyle.Render(effectiveRegistryDir()))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyStyle.Render("destination_dir"), valueStyle.Render(effectiveDestDir()))
	remote := cfg.RemoteURL
	if remote == "" {
		remote = "(not set)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyStyle.Render("remote_url"), valueStyle.Render(remote))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	return nil
}

func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
