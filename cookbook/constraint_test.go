package cookbook_test

import (
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"

	"github.com/shelfhq/shelf-cli/cookbook"
)

func v(t *testing.T, s string) semver.Version {
	parsed, err := cookbook.ParseVersion(s)
	assert.NoError(t, err)
	return parsed
}

func TestParseVersionTwoSegment(t *testing.T) {
	assert.Equal(t, v(t, "1.0.0"), v(t, "1.0"))

	_, err := cookbook.ParseVersion("not-a-version")
	assert.Error(t, err)
}

func TestConstraintAny(t *testing.T) {
	for _, raw := range []string{"", "any", "Any"} {
		c, err := cookbook.ParseConstraint(raw)
		assert.NoError(t, err)
		assert.True(t, c.Any())
		assert.True(t, c.SatisfiedBy(v(t, "0.1.0")))
		assert.True(t, c.SatisfiedBy(v(t, "99.0.0")))
	}
}

func TestConstraintOperators(t *testing.T) {
	testcases := []struct {
		constraint string
		version    string
		want       bool
	}{
		{"<= 1.0.0", "1.0.0", true},
		{"<= 1.0.0", "1.0.1", false},
		{"< 0.101.2", "0.101.1", true},
		{"< 0.101.2", "0.101.2", false},
		{"= 1.2.3", "1.2.3", true},
		{"= 1.2.3", "1.2.4", false},
		{"1.2.3", "1.2.3", true},
		{"> 2.0.0", "2.0.1", true},
		{">= 2.0.0", "2.0.0", true},
		{"~> 1.2.3", "1.2.9", true},
		{"~> 1.2.3", "1.3.0", false},
		{"~> 1.2.3", "1.2.2", false},
		{"~> 1.2", "1.9.0", true},
		{"~> 1.2", "2.0.0", false},
	}
	for _, tc := range testcases {
		c, err := cookbook.ParseConstraint(tc.constraint)
		assert.NoError(t, err, tc.constraint)
		assert.Equal(t, tc.want, c.SatisfiedBy(v(t, tc.version)), "%s vs %s", tc.constraint, tc.version)
	}
}

func TestConstraintPreReleaseOrdering(t *testing.T) {
	c, err := cookbook.ParseConstraint("< 1.0.0")
	assert.NoError(t, err)
	// A pre-release of 1.0.0 sorts below the final release.
	assert.True(t, c.SatisfiedBy(v(t, "1.0.0-rc.1")))
}

func TestConstraintRoundTrip(t *testing.T) {
	c := cookbook.MustParseConstraint("~> 1.2")
	text, err := c.MarshalText()
	assert.NoError(t, err)

	var back cookbook.Constraint
	assert.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, c.String(), back.String())
}
