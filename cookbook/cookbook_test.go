package cookbook_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfhq/shelf-cli/cookbook"
)

func TestReadMetadata(t *testing.T) {
	md, err := cookbook.ReadMetadata(filepath.Join("testdata", "ntp"))
	assert.NoError(t, err)
	assert.Equal(t, "ntp", md.Name)
	assert.Equal(t, "1.0.0", md.Version)
	assert.Len(t, md.Dependencies, 2)

	deps, err := md.ParsedDependencies()
	assert.NoError(t, err)
	assert.True(t, deps["build-essential"].SatisfiedBy(v(t, "0.0.1")))
	assert.False(t, deps["logrotate"].SatisfiedBy(v(t, "2.0.0")))

	_, err = cookbook.ReadMetadata(filepath.Join("testdata", "missing"))
	assert.Error(t, err)
}

func TestFromPath(t *testing.T) {
	cb, err := cookbook.FromPath(filepath.Join("testdata", "ntp"))
	assert.NoError(t, err)
	assert.Equal(t, "ntp", cb.Name)
	assert.Equal(t, "1.0.0", cb.Version.String())
	assert.Equal(t, "ntp@1.0.0", cb.String())
	assert.NotEmpty(t, cb.Checksum)

	// The checksum is stable across reads.
	again, err := cookbook.FromPath(filepath.Join("testdata", "ntp"))
	assert.NoError(t, err)
	assert.Equal(t, cb.Checksum, again.Checksum)
}
