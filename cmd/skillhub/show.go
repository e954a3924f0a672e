// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/pkg/resolver"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show <namespace/name[@constraint]>",
	Short: "Render a package's Markdown content",
	Long: `Resolve a package reference and render its skill.md in the terminal.
Use --raw to print the content without terminal styling, e.g. for piping.

Examples:
  skillhub show acme/review
  skillhub show acme/review@1.0.0
  skillhub show acme/review --raw > review.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runShow(cmd, args[0]))
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print raw Markdown without styling")
}

func runShow(cmd *cobra.Command, ref string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	rec, err := resolver.New(store).ResolveRef(cmd.Context(), ref)
	if err != nil {
		return err
	}

	content, err := rec.Content()
	if err != nil {
		return err
	}

	if showRaw {
		fmt.Fprint(cmd.OutOrStdout(), string(content))
		return nil
	}

	header := TitleStyle.Render(fmt.Sprintf("%s@%s", rec.ID, rec.Version))
	if kind := rec.Metadata["kind"]; kind != "" {
		header += SubtitleStyle.Render(" [" + kind + "]")
	}
	fmt.Fprintln(cmd.OutOrStdout(), header)
	if desc := rec.Metadata["description"]; desc != "" {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render(desc))
	}

	rendered, err := glamour.Render(string(content), "dark")
	if err != nil {
		return fmt.Errorf("failed to render content: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
