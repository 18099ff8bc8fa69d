package location

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryCleanupRemovesClones(t *testing.T) {
	factory := &Factory{}
	loc, err := factory.FromDescriptor(Descriptor{Type: TypeGit, URL: "https://example.com/ntp.git"})
	require.NoError(t, err)
	g, ok := loc.(*Git)
	require.True(t, ok)

	dir, err := ioutil.TempDir("", "shelf-clone-")
	require.NoError(t, err)
	g.cloneOnce.Do(func() { g.cloneDir = dir })

	factory.Cleanup()

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestGitCleanupWithoutClone(t *testing.T) {
	assert.NotPanics(t, func() {
		NewGit("https://example.com/ntp.git", "").Cleanup()
	})
}
