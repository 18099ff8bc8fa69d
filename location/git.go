package location

import (
	"io/ioutil"
	"sync"

	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
	"github.com/shelfhq/shelf-cli/vcs"
)

// A Git location serves the single cookbook at the root of a git
// repository, checked out at Ref.
type Git struct {
	URL string
	Ref string

	cloneOnce sync.Once
	cloneDir  string
	cloneErr  error
}

// NewGit constructs a Git location. Ref may be a branch, tag, or commit
// hash; empty means the remote default branch.
func NewGit(url, ref string) *Git {
	return &Git{URL: url, Ref: ref}
}

// clone checks the repository out once per location instance; Fetch and
// Install share the same working tree.
func (g *Git) clone() (string, error) {
	g.cloneOnce.Do(func() {
		dir, err := ioutil.TempDir("", "shelf-git-")
		if err != nil {
			g.cloneErr = err
			return
		}
		if _, err := vcs.CloneAt(g.URL, g.Ref, dir); err != nil {
			g.cloneErr = &errors.Error{
				Type:    errors.DownloadFailure,
				Cause:   err,
				Message: "could not clone " + g.URL,
			}
			return
		}
		g.cloneDir = dir
	})
	return g.cloneDir, g.cloneErr
}

func (g *Git) Fetch(name string, constraint cookbook.Constraint) ([]Candidate, error) {
	dir, err := g.clone()
	if err != nil {
		return nil, err
	}
	md, err := cookbook.ReadMetadata(dir)
	if err != nil {
		return nil, errNotFound(name, g)
	}
	if md.Name != name {
		return nil, errNotFound(name, g)
	}
	version, err := cookbook.ParseVersion(md.Version)
	if err != nil {
		return nil, err
	}
	if !constraint.SatisfiedBy(version) {
		return nil, errNoSatisfyingVersion(name, constraint, g)
	}
	return []Candidate{{Name: name, Version: version, Dir: dir}}, nil
}

func (g *Git) Install(candidate Candidate, store *cache.Store) (*cookbook.Cookbook, error) {
	key := cache.Key{
		Name:        candidate.Name,
		Version:     candidate.Version.String(),
		Fingerprint: g.Fingerprint(),
	}
	return store.GetOrInstall(key, func(dest string) error {
		return files.CopyDir(candidate.Dir, dest, func(rel string, isDir bool) bool {
			return rel != ".git"
		})
	})
}

// Cleanup removes the temporary clone, if one was made.
func (g *Git) Cleanup() {
	if g.cloneDir != "" {
		files.Rm(g.cloneDir)
	}
}

func (g *Git) Fingerprint() string {
	return g.Descriptor().Fingerprint()
}

func (g *Git) Descriptor() Descriptor {
	return Descriptor{Type: TypeGit, URL: g.URL, Ref: g.Ref}
}

func (g *Git) String() string {
	return g.Descriptor().String()
}
