// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/issue"
	"github.com/skillhub/skillhub/pkg/registry"
)

var syncURL string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror a remote registry into the local one",
	Long: `Fetch the index of a read-only remote registry and publish every
version the local registry is missing. Versions already published locally
are left untouched; transient HTTP failures are retried with backoff.

The remote URL comes from the config file (remote_url) or --url.

Examples:
  skillhub sync
  skillhub sync --url https://skills.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return finish(runSync(cmd))
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncURL, "url", "", "remote registry base URL (overrides config)")
}

func runSync(cmd *cobra.Command) error {
	url := syncURL
	if url == "" {
		url = cfg.RemoteURL
	}
	if url == "" {
		return issue.NewErrorContext().
			WithOperation("sync remote registry").
			WithSuggestion("Set remote_url in your config file or pass --url").
			Wrap(errors.New("no remote URL configured")).
			BuildError()
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	added, err := registry.Sync(cmd.Context(), store, registry.NewRemoteClient(url))
	if err != nil {
		if rendered, rerr := issue.Get(issue.RemoteSyncFailedId).Render("dark"); rerr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}

	if len(added) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("registry already up to date"))
		return nil
	}
	for _, rec := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "%s synced %s\n",
			SuccessStyle.Render("✓"),
			RefStyle.Render(fmt.Sprintf("%s@%s", rec.ID, rec.Version)))
	}
	return nil
}
