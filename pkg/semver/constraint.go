// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"regexp"
	"strconv"
	"strings"
)

type (
	// Constraint is a predicate over versions. It is the conjunction of one
	// or more clauses parsed from a space-separated constraint string.
	Constraint struct {
		clauses  []clause
		original string
	}

	// clause is a single operator + version pair, e.g. ">=1.2.0" or "^1.0.0".
	// Wildcard clauses ("*", "1.x", "1.2.x") are normalized to ranges during
	// parsing and keep wildcard=true so partial versions stay permissive.
	clause struct {
		op      string
		version Version
		// minorSet and patchSet record which components the clause text
		// actually spelled out. "~1" behaves like "~1.0" only when the minor
		// component was written; otherwise it spans the whole major line.
		minorSet bool
		patchSet bool
	}
)

// Latest is the constraint string meaning "highest stable version".
const Latest = "*"

// clauseRegex matches one constraint clause: optional operator followed by a
// possibly-partial version whose minor/patch may be a wildcard character.
var clauseRegex = regexp.MustCompile(
	`^(\^|~|>=|<=|>|<|=)?` +
		`v?(\d+|[xX*])(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?` +
		`(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?` +
		`(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?$`)

// ParseConstraint parses a constraint string. The empty string and "*" both
// mean "latest stable". Clauses separated by spaces must all hold (AND).
func ParseConstraint(s string) (*Constraint, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		trimmed = Latest
	}

	c := &Constraint{original: trimmed}
	for _, field := range strings.Fields(trimmed) {
		cl, err := parseClause(field)
		if err != nil {
			return nil, &InvalidConstraintError{Value: s}
		}
		c.clauses = append(c.clauses, cl)
	}

	return c, nil
}

// String returns the original constraint text.
func (c *Constraint) String() string { return c.original }

func parseClause(s string) (clause, error) {
	m := clauseRegex.FindStringSubmatch(s)
	if m == nil {
		return clause{}, &InvalidConstraintError{Value: s}
	}

	op := m[1]
	majorS, minorS, patchS, pre := m[2], m[3], m[4], m[5]

	isWild := func(s string) bool {
		return s == "x" || s == "X" || s == "*"
	}

	// A bare wildcard major ("*" / "x") matches everything stable.
	if isWild(majorS) {
		if op != "" || pre != "" {
			return clause{}, &InvalidConstraintError{Value: s}
		}
		return clause{op: "*"}, nil
	}

	major, err := strconv.Atoi(majorS)
	if err != nil {
		return clause{}, &InvalidConstraintError{Value: s}
	}

	cl := clause{
		op:      op,
		version: Version{Major: major, Prerelease: pre},
	}

	switch {
	case minorS == "" || isWild(minorS):
		// "1" or "1.x": a whole major line. Only valid without an explicit
		// comparison operator or with range-style operators.
		if pre != "" {
			return clause{}, &InvalidConstraintError{Value: s}
		}
		if op == "" || op == "=" {
			cl.op = "major"
			return cl, nil
		}
		// ">=1" style: treat as >=1.0.0.
	default:
		cl.minorSet = true
		cl.version.Minor, err = strconv.Atoi(minorS)
		if err != nil {
			return clause{}, &InvalidConstraintError{Value: s}
		}
	}

	switch {
	case patchS == "" || isWild(patchS):
		if cl.minorSet && (op == "" || op == "=") {
			// "1.2" or "1.2.x": a whole minor line.
			if pre != "" {
				return clause{}, &InvalidConstraintError{Value: s}
			}
			cl.op = "minor"
			return cl, nil
		}
	default:
		cl.patchSet = true
		cl.version.Patch, err = strconv.Atoi(patchS)
		if err != nil {
			return clause{}, &InvalidConstraintError{Value: s}
		}
	}

	if cl.op == "" {
		cl.op = "="
	}
	return cl, nil
}

// Matches reports whether v satisfies the constraint.
//
// Pre-release versions are only admitted when some clause explicitly names a
// pre-release on the same major.minor.patch tuple; otherwise they are
// excluded even when the numeric comparison would admit them.
func (c *Constraint) Matches(v Version) bool {
	for _, cl := range c.clauses {
		if !cl.matches(v) {
			return false
		}
	}
	if v.IsPrerelease() && !c.admitsPrerelease(v) {
		return false
	}
	return true
}

// admitsPrerelease reports whether any clause opted into pre-releases for
// the version's core tuple.
func (c *Constraint) admitsPrerelease(v Version) bool {
	for _, cl := range c.clauses {
		if cl.version.Prerelease != "" && cl.version.coreEqual(v) {
			return true
		}
	}
	return false
}

func (cl clause) matches(v Version) bool {
	switch cl.op {
	case "*":
		return true

	case "major":
		return v.Major == cl.version.Major

	case "minor":
		return v.Major == cl.version.Major && v.Minor == cl.version.Minor

	case "=":
		return v.Compare(cl.version) == 0

	case ">":
		return v.Compare(cl.version) > 0

	case ">=":
		return v.Compare(cl.version) >= 0

	case "<":
		return v.Compare(cl.version) < 0

	case "<=":
		return v.Compare(cl.version) <= 0

	case "^":
		// Caret: no change to the left-most non-zero component.
		// ^1.2.3 := >=1.2.3 <2.0.0, ^0.2.3 := >=0.2.3 <0.3.0, ^0.0.3 := =0.0.3
		if v.Compare(cl.version) < 0 {
			return false
		}
		if cl.version.Major != 0 {
			return v.Major == cl.version.Major
		}
		if cl.version.Minor != 0 {
			return v.Major == 0 && v.Minor == cl.version.Minor
		}
		return v.Major == 0 && v.Minor == 0 && v.Patch == cl.version.Patch

	case "~":
		// Tilde: patch-level changes when minor was spelled out, otherwise
		// the whole major line (~1 == 1.x).
		if v.Compare(cl.version) < 0 {
			return false
		}
		if !cl.minorSet {
			return v.Major == cl.version.Major
		}
		return v.Major == cl.version.Major && v.Minor == cl.version.Minor

	default:
		return false
	}
}

// MaxSatisfying returns the highest version matching the constraint, or
// false when none match.
func MaxSatisfying(versions []Version, c *Constraint) (Version, bool) {
	var best Version
	found := false
	for _, v := range versions {
		if !c.Matches(v) {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}

// IsValid reports whether s parses as a semantic version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// IsValidConstraint reports whether s parses as a constraint.
func IsValidConstraint(s string) bool {
	_, err := ParseConstraint(s)
	return err == nil
}
