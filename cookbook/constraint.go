package cookbook

import (
	"strings"

	"github.com/blang/semver"
	"github.com/pkg/errors"
)

// A Constraint is a single-clause version range predicate. The zero
// value is the unconstrained range: every version satisfies it.
//
// Supported operators are =, >, >=, <, <= and the pessimistic ~>.
// "~> 1.2.3" admits >= 1.2.3, < 1.3.0; "~> 1.2" admits >= 1.2.0,
// < 2.0.0. A bare version is shorthand for an exact match.
type Constraint struct {
	op       string
	version  semver.Version
	segments int
	raw      string
}

var constraintOps = []string{"~>", ">=", "<=", "=", ">", "<"}

// ParseConstraint parses a constraint expression. The empty string and
// "any" parse to the unconstrained range.
func ParseConstraint(s string) (Constraint, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || strings.EqualFold(raw, "any") {
		return Constraint{}, nil
	}

	op := "="
	rest := raw
	for _, candidate := range constraintOps {
		if strings.HasPrefix(raw, candidate) {
			op = candidate
			rest = strings.TrimSpace(raw[len(candidate):])
			break
		}
	}

	v, segments, err := parseVersionSegments(rest)
	if err != nil {
		return Constraint{}, errors.Wrapf(err, "invalid constraint %q", s)
	}
	return Constraint{op: op, version: v, segments: segments, raw: raw}, nil
}

// MustParseConstraint is ParseConstraint for static expressions; it
// panics on a parse error.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Any reports whether the constraint is the unconstrained range.
func (c Constraint) Any() bool {
	return c.op == ""
}

// SatisfiedBy reports whether v meets the constraint.
func (c Constraint) SatisfiedBy(v semver.Version) bool {
	switch c.op {
	case "":
		return true
	case "=":
		return v.EQ(c.version)
	case ">":
		return v.GT(c.version)
	case ">=":
		return v.GTE(c.version)
	case "<":
		return v.LT(c.version)
	case "<=":
		return v.LTE(c.version)
	case "~>":
		return v.GTE(c.version) && v.LT(c.pessimisticUpper())
	}
	return false
}

// pessimisticUpper is the exclusive upper bound of a ~> constraint: the
// rightmost specified segment's parent is bumped.
func (c Constraint) pessimisticUpper() semver.Version {
	if c.segments <= 2 {
		return semver.Version{Major: c.version.Major + 1}
	}
	return semver.Version{Major: c.version.Major, Minor: c.version.Minor + 1}
}

// String returns the expression as written. A ~> constraint must keep
// its original segment count, since that decides its upper bound.
func (c Constraint) String() string {
	if c.Any() {
		return ">= 0.0.0"
	}
	return c.raw
}

// MarshalText persists the constraint in its canonical form.
func (c Constraint) MarshalText() ([]byte, error) {
	if c.Any() {
		return []byte(""), nil
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses a persisted constraint.
func (c *Constraint) UnmarshalText(text []byte) error {
	parsed, err := ParseConstraint(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
