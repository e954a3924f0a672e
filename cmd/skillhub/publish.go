// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/issue"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

var publishCmd = &cobra.Command{
	Use:   "publish <package-dir>",
	Short: "Publish a package directory into the registry",
	Long: `Validate a package directory and publish its content under the
namespace/name/version declared in skillpack.cue. Published versions are
immutable; publishing an existing version fails.

A package directory contains:
  skill.md        the Markdown content
  skillpack.cue   namespace, name, version, kind, and optional fields

Examples:
  skillhub publish ./my-skill
  skillhub publish ./my-skill --registry /srv/registry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runPublish(cmd, args[0]))
	},
}

func runPublish(cmd *cobra.Command, dir string) error {
	result, err := skillpkg.ValidateDir(dir)
	if err != nil {
		return issue.WrapWithContext(err, "validate package", dir)
	}
	if err := result.Err(); err != nil {
		for _, vi := range result.Issues {
			fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("✗ ")+vi.Error())
		}
		return issue.NewErrorContext().
			WithOperation("publish package").
			WithResource(dir).
			WithSuggestion("Fix the issues above and publish again").
			Wrap(err).
			BuildError()
	}

	content, err := os.ReadFile(result.ContentPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", skillpkg.ContentFileName, err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	rec, err := store.Publish(result.Metadata, content)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s published %s\n",
		SuccessStyle.Render("✓"),
		RefStyle.Render(fmt.Sprintf("%s@%s", rec.ID, rec.Version)))
	return nil
}
