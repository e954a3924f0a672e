// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/skillhub/skillhub/internal/installer"
	"github.com/skillhub/skillhub/pkg/registry"
	"github.com/skillhub/skillhub/pkg/resolver"
	"github.com/skillhub/skillhub/pkg/semver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

// Exit codes reported by the skillhub binary.
const (
	// ExitSuccess: the operation completed.
	ExitSuccess = 0
	// ExitResolution: the package or a matching version does not exist.
	ExitResolution = 1
	// ExitIO: registry, installer, or other I/O failure.
	ExitIO = 2
	// ExitInvalidInput: a malformed reference, constraint, or version.
	ExitInvalidInput = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor classifies an error into a process exit code. Invalid input
// wins over resolution failures, which win over the generic I/O bucket.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, semver.ErrInvalidConstraint),
		errors.Is(err, semver.ErrInvalidVersion),
		errors.Is(err, skillpkg.ErrInvalidRef):
		return ExitInvalidInput
	case errors.Is(err, registry.ErrUnknownPackage),
		errors.Is(err, resolver.ErrNoMatchingVersion):
		return ExitResolution
	case errors.Is(err, installer.ErrNotInstalled),
		errors.Is(err, installer.ErrDestinationLocked),
		errors.Is(err, registry.ErrDuplicateVersion):
		return ExitIO
	default:
		return ExitIO
	}
}

// exitWrap attaches the mapped exit code to err so Execute can report it.
func exitWrap(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: exitCodeFor(err), Err: err}
}
