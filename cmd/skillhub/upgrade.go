// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/installer"
	"github.com/skillhub/skillhub/pkg/resolver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <namespace/name[@constraint]>",
	Short: "Re-resolve an installed package and switch versions if needed",
	Long: `Resolve the reference again and replace the installed version when a
different one is selected. When the resolved version matches the installed
one the upgrade is a successful no-op.

Examples:
  skillhub upgrade acme/review
  skillhub upgrade acme/review@^1.0.0 --dest ./skills`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runUpgrade(cmd, args[0]))
	},
}

func runUpgrade(cmd *cobra.Command, ref string) error {
	parsed, err := skillpkg.ParseRef(ref)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	dest := effectiveDestDir()
	pkg, changed, err := installer.New(logger).Upgrade(
		cmd.Context(), resolver.New(store), parsed.ID, parsed.Constraint, dest)
	if err != nil {
		return err
	}

	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already at %s\n",
			RefStyle.Render(pkg.ID().String()), RefStyle.Render(pkg.Version))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s upgraded to %s\n",
		SuccessStyle.Render("✓"), RefStyle.Render(pkg.ID().String()), RefStyle.Render(pkg.Version))
	return nil
}
