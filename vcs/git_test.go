package vcs_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"

	"github.com/shelfhq/shelf-cli/vcs"
)

// makeRepo builds a local repository with two commits; the first is
// tagged v1.0.0. Returns the repository directory and both hashes.
func makeRepo(t *testing.T) (string, plumbing.Hash, plumbing.Hash) {
	dir, err := ioutil.TempDir("", "shelf-vcs-src-")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	author := &object.Signature{Name: "shelf", Email: "shelf@example.com", When: time.Now()}

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "metadata.json"), []byte(`{"name":"ntp","version":"1.0.0"}`), 0644))
	_, err = worktree.Add("metadata.json")
	require.NoError(t, err)
	first, err := worktree.Commit("release 1.0.0", &git.CommitOptions{Author: author})
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference("refs/tags/v1.0.0", first)))

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "metadata.json"), []byte(`{"name":"ntp","version":"1.1.0"}`), 0644))
	_, err = worktree.Add("metadata.json")
	require.NoError(t, err)
	second, err := worktree.Commit("release 1.1.0", &git.CommitOptions{Author: author})
	require.NoError(t, err)

	return dir, first, second
}

func cloneDest(t *testing.T) string {
	dir, err := ioutil.TempDir("", "shelf-vcs-dst-")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	// CloneAt wants a path it can create itself.
	require.NoError(t, os.RemoveAll(dir))
	return dir
}

func TestCloneAtTag(t *testing.T) {
	src, first, _ := makeRepo(t)

	head, err := vcs.CloneAt(src, "v1.0.0", cloneDest(t))
	assert.NoError(t, err)
	assert.Equal(t, first.String(), head)
}

func TestCloneAtCommitHash(t *testing.T) {
	src, first, _ := makeRepo(t)

	head, err := vcs.CloneAt(src, first.String(), cloneDest(t))
	assert.NoError(t, err)
	assert.Equal(t, first.String(), head)
}

func TestCloneAtDefaultHead(t *testing.T) {
	src, _, second := makeRepo(t)

	head, err := vcs.CloneAt(src, "", cloneDest(t))
	assert.NoError(t, err)
	assert.Equal(t, second.String(), head)
}

func TestCloneAtRemoteBranch(t *testing.T) {
	src, _, second := makeRepo(t)

	head, err := vcs.CloneAt(src, "master", cloneDest(t))
	assert.NoError(t, err)
	assert.Equal(t, second.String(), head)
}

func TestCloneAtUnknownRef(t *testing.T) {
	src, _, _ := makeRepo(t)

	_, err := vcs.CloneAt(src, "no-such-ref", cloneDest(t))
	assert.Error(t, err)
}
