// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for skillhub.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/skillhub/skillhub/internal/config"
	"github.com/skillhub/skillhub/internal/issue"
	"github.com/skillhub/skillhub/pkg/registry"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// registryDir overrides the configured registry directory
	registryDir string
	// destDir overrides the configured destination directory
	destDir string

	// cfg is the loaded configuration, populated by initRootConfig.
	cfg *config.Config

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "skillhub",
		Short: "A registry and installer for Markdown skill packages",
		Long: TitleStyle.Render("skillhub") + SubtitleStyle.Render(" - A registry and installer for Markdown skill packages") + `

skillhub manages versioned Markdown skill and rule packages in a local
filesystem registry. Published versions are immutable; installs resolve
a SemVer constraint to exactly one version and write it atomically.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Publish a package directory: skillhub publish ./my-skill
  2. Install it somewhere: skillhub install acme/review@^1.0.0 --dest ./skills
  3. Keep it fresh: skillhub upgrade acme/review --dest ./skills

` + SubtitleStyle.Render("Examples:") + `
  skillhub list                       List all packages in the registry
  skillhub list acme/review           List published versions of a package
  skillhub resolve acme/review@1.x    Show which version a constraint picks
  skillhub show acme/review           Render a package's content
  skillhub sync                       Mirror a remote registry locally`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/skillhub/config.cue)")
	rootCmd.PersistentFlags().StringVar(&registryDir, "registry", "", "registry directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&destDir, "dest", "", "destination directory (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitCodeFor(err))
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	loaded, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		// Config errors never abort the run; defaults still apply.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		loaded, _ = config.DefaultConfig()
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	cfg = loaded

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// effectiveRegistryDir applies the --registry flag over the config.
func effectiveRegistryDir() string {
	if registryDir != "" {
		return registryDir
	}
	return cfg.RegistryDir
}

// effectiveDestDir applies the --dest flag over the config.
func effectiveDestDir() string {
	if destDir != "" {
		return destDir
	}
	return cfg.DestinationDir
}

// openStore opens the effective registry directory, rendering the registry
// help card on failure.
func openStore() (*registry.Store, error) {
	store, err := registry.Open(effectiveRegistryDir(), logger)
	if err != nil {
		if rendered, rerr := issue.Get(issue.RegistryOpenFailedId).Render("dark"); rerr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, err
	}
	return store, nil
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
