// SPDX-License-Identifier: MPL-2.0

// Package skillpkg defines skill package identity: namespaced package IDs,
// the namespace/name[@constraint] reference grammar used across the CLI, and
// the skillpack.cue metadata format.
//
// Package content is an opaque Markdown blob. Nothing in this package or its
// consumers inspects the Markdown structure; that is payload for whichever
// assistant ends up reading the installed file.
package skillpkg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// ContentFileName is the canonical content file inside a package
	// directory and inside the registry.
	ContentFileName = "skill.md"

	// MetadataFileName is the package metadata file, in CUE format.
	MetadataFileName = "skillpack.cue"
)

// ErrInvalidRef is the sentinel error wrapped by InvalidRefError.
var ErrInvalidRef = errors.New("invalid package reference")

type (
	// PackageID uniquely identifies a package lineage as namespace/name.
	// Immutable once created; the zero value is invalid.
	PackageID struct {
		Namespace string
		Name      string
	}

	// Ref is a parsed package reference: an ID plus an optional version
	// constraint. An empty Constraint means "latest stable".
	Ref struct {
		ID         PackageID
		Constraint string
	}

	// InvalidRefError is returned when a reference string does not follow
	// the namespace/name[@version-or-range] grammar.
	InvalidRefError struct {
		Value  string
		Reason string
	}
)

// nameRegex validates namespace and name segments: start with a letter,
// lowercase alphanumeric with non-adjacent hyphens.
var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Error implements the error interface for InvalidRefError.
func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("invalid package reference %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidRef for errors.Is() compatibility.
func (e *InvalidRefError) Unwrap() error { return ErrInvalidRef }

// String returns the namespace/name form of the ID.
func (id PackageID) String() string {
	return id.Namespace + "/" + id.Name
}

// IsValid reports whether both segments follow the naming rules.
func (id PackageID) IsValid() bool {
	return nameRegex.MatchString(id.Namespace) && nameRegex.MatchString(id.Name)
}

// String returns the reference in namespace/name[@constraint] form.
func (r Ref) String() string {
	if r.Constraint == "" {
		return r.ID.String()
	}
	return r.ID.String() + "@" + r.Constraint
}

// ParseID parses a bare namespace/name identifier.
func ParseID(s string) (PackageID, error) {
	ref, err := ParseRef(s)
	if err != nil {
		return PackageID{}, err
	}
	if ref.Constraint != "" {
		return PackageID{}, &InvalidRefError{Value: s, Reason: "version suffix not allowed here"}
	}
	return ref.ID, nil
}

// ParseRef parses a namespace/name[@version-or-range] reference.
// The constraint, when present, is kept verbatim; constraint syntax is
// validated by the resolver so malformed ranges fail before any store access.
func ParseRef(s string) (Ref, error) {
	base := s
	constraint := ""
	if at := strings.IndexByte(s, '@'); at >= 0 {
		base = s[:at]
		constraint = s[at+1:]
		if constraint == "" {
			return Ref{}, &InvalidRefError{Value: s, Reason: "empty version after '@'"}
		}
	}

	namespace, name, ok := strings.Cut(base, "/")
	if !ok {
		return Ref{}, &InvalidRefError{Value: s, Reason: "expected namespace/name"}
	}
	if strings.ContainsRune(name, '/') {
		return Ref{}, &InvalidRefError{Value: s, Reason: "too many path segments"}
	}

	id := PackageID{Namespace: namespace, Name: name}
	if !id.IsValid() {
		return Ref{}, &InvalidRefError{
			Value:  s,
			Reason: "segments must start with a letter and contain only lowercase alphanumerics and hyphens",
		}
	}

	return Ref{ID: id, Constraint: constraint}, nil
}
