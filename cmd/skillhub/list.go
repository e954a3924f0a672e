// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/installer"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

var listInstalled bool

var listCmd = &cobra.Command{
	Use:   "list [namespace/name]",
	Short: "List registry packages or published versions",
	Long: `Without arguments, list every package in the registry. With a package
identity, list its published versions in ascending order. With --installed,
list what the destination's manifest records instead.

Examples:
  skillhub list
  skillhub list acme/review
  skillhub list --installed --dest ./skills`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listInstalled {
			return finish(runListInstalled(cmd))
		}
		if len(args) == 1 {
			return finish(runListVersions(cmd, args[0]))
		}
		return finish(runListPackages(cmd))
	},
}

func init() {
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "list installed packages at the destination")
}

func runListPackages(cmd *cobra.Command) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	ids := store.Packages()
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("registry is empty"))
		return nil
	}
	for _, id := range ids {
		versions, err := store.Versions(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
			RefStyle.Render(id.String()),
			SubtitleStyle.Render(fmt.Sprintf("(%d versions)", len(versions))))
	}
	return nil
}

func runListVersions(cmd *cobra.Command, arg string) error {
	id, err := skillpkg.ParseID(arg)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	records, err := store.ListVersions(id)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render(id.String()))
	for rec := range records {
		line := RefStyle.Render(rec.Version.String())
		if desc := rec.Metadata["description"]; desc != "" {
			line += "  " + SubtitleStyle.Render(desc)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "  "+line)
	}
	return nil
}

func runListInstalled(cmd *cobra.Command) error {
	dest := effectiveDestDir()
	manifest, err := installer.LoadManifest(dest)
	if err != nil {
		return err
	}

	if len(manifest.Packages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("nothing installed at "+dest))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render("Installed at "+dest))
	for _, pkg := range manifest.Packages {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n",
			RefStyle.Render(fmt.Sprintf("%s@%s", pkg.ID(), pkg.Version)),
			SubtitleStyle.Render(pkg.InstalledAt.Format("2006-01-02 15:04")))
	}
	return nil
}
