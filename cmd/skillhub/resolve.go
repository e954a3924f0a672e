// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/pkg/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <namespace/name[@constraint]>",
	Short: "Show which version a reference resolves to",
	Long: `Resolve a package reference without installing anything. Prints the
selected version, so the same reference passed to 'install' is guaranteed
to pick the same version (given an unchanged registry).

Examples:
  skillhub resolve acme/review
  skillhub resolve acme/review@^1.0.0
  skillhub resolve acme/review@1.x`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runResolve(cmd, args[0]))
	},
}

func runResolve(cmd *cobra.Command, ref string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	rec, err := resolver.New(store).ResolveRef(cmd.Context(), ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
		RefStyle.Render(fmt.Sprintf("%s@%s", rec.ID, rec.Version)))
	return nil
}
