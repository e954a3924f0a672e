// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"

	"github.com/skillhub/skillhub/pkg/semver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

var (
	// ErrUnknownPackage is the sentinel error wrapped by UnknownPackageError.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrDuplicateVersion is the sentinel error wrapped by DuplicateVersionError.
	ErrDuplicateVersion = errors.New("duplicate version")
)

type (
	// UnknownPackageError is returned when a package ID has never been
	// published to the registry.
	UnknownPackageError struct {
		ID skillpkg.PackageID
	}

	// DuplicateVersionError is returned when publishing a (package, version)
	// pair that already exists. Publication is write-once; existing versions
	// are never overwritten.
	DuplicateVersionError struct {
		ID      skillpkg.PackageID
		Version semver.Version
	}
)

// Error implements the error interface for UnknownPackageError.
func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("package %s has never been published", e.ID)
}

// Unwrap returns ErrUnknownPackage for errors.Is() compatibility.
func (e *UnknownPackageError) Unwrap() error { return ErrUnknownPackage }

// Error implements the error interface for DuplicateVersionError.
func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("package %s@%s is already published (publications are write-once)", e.ID, e.Version)
}

// Unwrap returns ErrDuplicateVersion for errors.Is() compatibility.
func (e *DuplicateVersionError) Unwrap() error { return ErrDuplicateVersion }
