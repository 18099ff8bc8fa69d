// Package vcs implements functions for interacting with version control
// systems.
package vcs

import (
	"os"

	"github.com/apex/log"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
)

// CloneAt clones url into dir and checks out ref. The ref may be a
// branch name, a tag name, or a full commit hash; an empty ref leaves
// the remote's default HEAD checked out. Returns the commit hash that
// ended up checked out.
func CloneAt(url, ref, dir string) (string, error) {
	log.WithFields(log.Fields{
		"url": url,
		"ref": ref,
	}).Debug("cloning git repository")

	repo, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL: url,
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	if ref != "" {
		if err := checkout(repo, ref); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}

func checkout(repo *git.Repository, ref string) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return err
	}

	// Try, in order: commit hash, tag, remote branch.
	candidates := []git.CheckoutOptions{
		{Hash: plumbing.NewHash(ref)},
		{Branch: plumbing.ReferenceName("refs/tags/" + ref)},
		{Branch: plumbing.ReferenceName("refs/remotes/origin/" + ref)},
	}
	if len(ref) != 40 {
		candidates = candidates[1:]
	}

	var lastErr error
	for i := range candidates {
		err := worktree.Checkout(&candidates[i])
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}
