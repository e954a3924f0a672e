// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/installer"
	"github.com/skillhub/skillhub/pkg/resolver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

var installCmd = &cobra.Command{
	Use:   "install <namespace/name[@constraint]>",
	Short: "Resolve a package and install it into the destination",
	Long: `Resolve a package reference against the registry and install the
selected version into the destination directory.

Without a constraint the latest stable version is installed. Pre-release
versions are only considered when the constraint names one explicitly.

Examples:
  skillhub install acme/review
  skillhub install acme/review@^1.0.0 --dest ./skills
  skillhub install acme/review@2.0.0-rc.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runInstall(cmd, args[0]))
	},
}

func runInstall(cmd *cobra.Command, ref string) error {
	parsed, err := skillpkg.ParseRef(ref)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	rec, err := resolver.New(store).Resolve(cmd.Context(), parsed.ID, parsed.Constraint)
	if err != nil {
		return err
	}

	dest := effectiveDestDir()
	pkg, err := installer.New(logger).Install(cmd.Context(), rec, dest)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s installed to %s\n",
		SuccessStyle.Render("✓"),
		RefStyle.Render(fmt.Sprintf("%s@%s", pkg.ID(), pkg.Version)),
		dest)
	return nil
}
