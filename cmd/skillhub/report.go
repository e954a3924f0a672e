// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/skillhub/skillhub/internal/installer"
	"github.com/skillhub/skillhub/internal/issue"
	"github.com/skillhub/skillhub/pkg/registry"
	"github.com/skillhub/skillhub/pkg/resolver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

// issueFor maps an error to its help card, if one exists.
func issueFor(err error) *issue.Issue {
	switch {
	case errors.Is(err, skillpkg.ErrInvalidRef):
		return issue.Get(issue.InvalidRefId)
	case errors.Is(err, registry.ErrUnknownPackage):
		return issue.Get(issue.PackageNotFoundId)
	case errors.Is(err, resolver.ErrNoMatchingVersion):
		return issue.Get(issue.NoMatchingVersionId)
	case errors.Is(err, installer.ErrDestinationLocked):
		return issue.Get(issue.DestinationLockedId)
	default:
		return nil
	}
}

// finish turns an operation result into a RunE return value: nil passes
// through, and failures get their help card rendered (unless verbose, where
// the raw chain is more useful) plus the mapped exit code.
func finish(err error) error {
	if err == nil {
		return nil
	}
	if !verbose {
		if is := issueFor(err); is != nil {
			if rendered, rerr := is.Render("dark"); rerr == nil {
				fmt.Fprint(os.Stderr, rendered)
			}
		}
	}
	return exitWrap(err)
}
