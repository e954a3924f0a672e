// SPDX-License-Identifier: MPL-2.0

// Package semver implements semantic version parsing, ordering, and
// constraint matching for skill package resolution.
//
// Versions follow the major.minor.patch form with optional pre-release and
// build metadata suffixes. Build metadata is carried but ignored when
// comparing precedence. Constraints support exact versions, comparison
// operators, caret and tilde shorthands, wildcards, and space-separated AND
// ranges (e.g. ">=1.0.0 <2.0.0").
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidConstraint is the sentinel error wrapped by InvalidConstraintError.
	ErrInvalidConstraint = errors.New("invalid constraint")
)

type (
	// Version is a parsed semantic version. The zero value is "0.0.0".
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Build      string

		original string
	}

	// InvalidVersionError is returned when a version string cannot be parsed.
	InvalidVersionError struct {
		Value string
	}

	// InvalidConstraintError is returned when a constraint string cannot be
	// parsed. Resolution fails fast on it, before any registry access.
	InvalidConstraintError struct {
		Value string
	}
)

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: must be major.minor.patch with optional pre-release/build suffix", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Error implements the error interface for InvalidConstraintError.
func (e *InvalidConstraintError) Error() string {
	return fmt.Sprintf("invalid constraint %q: expected a version, range (^1.2.0, ~1.2.0, >=1.0.0 <2.0.0), or wildcard (*, 1.x)", e.Value)
}

// Unwrap returns ErrInvalidConstraint for errors.Is() compatibility.
func (e *InvalidConstraintError) Unwrap() error { return ErrInvalidConstraint }

// versionRegex matches a full semantic version string.
var versionRegex = regexp.MustCompile(
	`^v?(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?` +
		`(?:\+([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)

// Parse parses a strict semantic version string. A leading "v" is tolerated.
func Parse(s string) (Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &InvalidVersionError{Value: s}
	}

	// The regex guarantees the numeric groups are well-formed.
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	return Version{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: m[4],
		Build:      m[5],
		original:   s,
	}, nil
}

// MustParse parses a version string and panics on failure.
// Intended for tests and compile-time constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the canonical string form of the version.
func (v Version) String() string {
	if v.original != "" {
		return strings.TrimPrefix(v.original, "v")
	}
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// IsPrerelease reports whether the version carries a pre-release suffix.
func (v Version) IsPrerelease() bool { return v.Prerelease != "" }

// coreEqual reports whether the major.minor.patch tuples are equal.
func (v Version) coreEqual(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

// Compare returns -1, 0, or 1 if v is lower than, equal to, or higher than o
// in semantic version precedence. Build metadata is ignored.
func (v Version) Compare(o Version) int {
	if c := compareInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, o.Patch); c != 0 {
		return c
	}
	return comparePrerelease(v.Prerelease, o.Prerelease)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePrerelease orders pre-release suffixes per semver precedence:
// a release outranks any pre-release; dot-separated identifiers compare
// left to right; numeric identifiers compare numerically and rank below
// alphanumeric ones; a shorter identifier list ranks below a longer one
// when all shared identifiers are equal.
func comparePrerelease(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		ap, bp := aParts[i], bParts[i]
		if ap == bp {
			continue
		}

		aNum, aIsNum := parseNumericIdent(ap)
		bNum, bIsNum := parseNumericIdent(bp)

		switch {
		case aIsNum && bIsNum:
			return compareInt(aNum, bNum)
		case aIsNum:
			return -1
		case bIsNum:
			return 1
		default:
			if ap < bp {
				return -1
			}
			return 1
		}
	}

	return compareInt(len(aParts), len(bParts))
}

func parseNumericIdent(s string) (int, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Sort orders versions ascending by precedence, in place.
func Sort(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) < 0
	})
}
