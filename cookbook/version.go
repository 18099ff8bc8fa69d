// Package cookbook provides the domain types of shelf: cookbook
// versions, version constraints, manifests, and cached artifacts.
package cookbook

import (
	"strings"

	"github.com/blang/semver"
	"github.com/pkg/errors"
)

// ParseVersion parses a cookbook version. Cookbook versions are
// semantic versions, except that a two-segment form like "1.0" is
// accepted and normalized to "1.0.0".
func ParseVersion(s string) (semver.Version, error) {
	v, _, err := parseVersionSegments(s)
	return v, err
}

func parseVersionSegments(s string) (semver.Version, int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "v"))
	segments := len(strings.Split(strings.SplitN(s, "-", 2)[0], "."))
	if segments == 2 {
		parts := strings.SplitN(s, "-", 2)
		parts[0] += ".0"
		s = strings.Join(parts, "-")
	}
	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, 0, errors.Wrapf(err, "invalid version %q", s)
	}
	return v, segments, nil
}
