// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/installer"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <namespace/name>",
	Short: "Remove an installed package from the destination",
	Long: `Remove a package's content and manifest entry from the destination
directory. Fails when the package is not currently installed there.

Examples:
  skillhub uninstall acme/review
  skillhub uninstall acme/review --dest ./skills`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runUninstall(cmd, args[0]))
	},
}

func runUninstall(cmd *cobra.Command, arg string) error {
	id, err := skillpkg.ParseID(arg)
	if err != nil {
		return err
	}

	dest := effectiveDestDir()
	if err := installer.New(logger).Uninstall(id, dest); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s removed from %s\n",
		SuccessStyle.Render("✓"), RefStyle.Render(id.String()), dest)
	return nil
}
