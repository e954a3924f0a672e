// SPDX-License-Identifier: MPL-2.0

// Package resolver maps a package reference plus version constraint to
// exactly one published version, or reports why none exists.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/skillhub/skillhub/pkg/registry"
	"github.com/skillhub/skillhub/pkg/semver"
	"github.com/skillhub/skillhub/pkg/skillpkg"
)

// ErrNoMatchingVersion is the sentinel error wrapped by NoMatchingVersionError.
var ErrNoMatchingVersion = errors.New("no matching version")

type (
	// Store is the registry surface the resolver needs. Satisfied by
	// *registry.Store.
	Store interface {
		Get(id skillpkg.PackageID, c *semver.Constraint) ([]*registry.Record, error)
		Versions(id skillpkg.PackageID) ([]semver.Version, error)
	}

	// NoMatchingVersionError is returned when a constraint is well-formed
	// but no published version satisfies it. Available carries the published
	// versions so callers can surface them.
	NoMatchingVersionError struct {
		ID         skillpkg.PackageID
		Constraint string
		Available  []semver.Version
	}

	// Resolver selects concrete versions against a registry store.
	// Resolution is deterministic: the same store state and constraint
	// always select the same version.
	Resolver struct {
		store Store
	}
)

// Error implements the error interface for NoMatchingVersionError.
func (e *NoMatchingVersionError) Error() string {
	available := make([]string, len(e.Available))
	for i, v := range e.Available {
		available[i] = v.String()
	}
	return fmt.Sprintf("no version of %s satisfies %q (available: [%s])",
		e.ID, e.Constraint, strings.Join(available, ", "))
}

// Unwrap returns ErrNoMatchingVersion for errors.Is() compatibility.
func (e *NoMatchingVersionError) Unwrap() error { return ErrNoMatchingVersion }

// New creates a resolver over the given store.
func New(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve selects the highest published version of id satisfying constraint.
// An empty constraint means "latest stable". Pre-release versions are
// considered only when the constraint itself names a pre-release.
//
// Malformed constraints fail with semver.InvalidConstraintError before the
// store is touched.
func (r *Resolver) Resolve(ctx context.Context, id skillpkg.PackageID, constraint string) (*registry.Record, error) {
	c, err := semver.ParseConstraint(constraint)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("resolve %s canceled: %w", id, ctx.Err())
	default:
	}

	matching, err := r.store.Get(id, c)
	if err != nil {
		return nil, err
	}

	if len(matching) == 0 {
		available, err := r.store.Versions(id)
		if err != nil {
			return nil, err
		}
		return nil, &NoMatchingVersionError{ID: id, Constraint: c.String(), Available: available}
	}

	// Records come back ascending by precedence; the last one is the pick.
	return matching[len(matching)-1], nil
}

// ResolveRef parses a namespace/name[@constraint] reference and resolves it.
func (r *Resolver) ResolveRef(ctx context.Context, ref string) (*registry.Record, error) {
	parsed, err := skillpkg.ParseRef(ref)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, parsed.ID, parsed.Constraint)
}
