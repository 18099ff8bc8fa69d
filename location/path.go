package location

import (
	"path/filepath"

	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/files"
)

// A Path location serves exactly one cookbook: the one whose source
// tree lives at Dir.
type Path struct {
	Dir string
}

// NewPath constructs a Path location, normalizing Dir to an absolute
// path so its fingerprint is stable regardless of working directory.
func NewPath(dir string) (*Path, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Path{Dir: abs}, nil
}

func (p *Path) Fetch(name string, constraint cookbook.Constraint) ([]Candidate, error) {
	md, err := cookbook.ReadMetadata(p.Dir)
	if err != nil {
		return nil, errNotFound(name, p)
	}
	if md.Name != name {
		return nil, errNotFound(name, p)
	}
	version, err := cookbook.ParseVersion(md.Version)
	if err != nil {
		return nil, err
	}
	if !constraint.SatisfiedBy(version) {
		return nil, errNoSatisfyingVersion(name, constraint, p)
	}
	return []Candidate{{Name: name, Version: version, Dir: p.Dir}}, nil
}

func (p *Path) Install(candidate Candidate, store *cache.Store) (*cookbook.Cookbook, error) {
	key := cache.Key{
		Name:        candidate.Name,
		Version:     candidate.Version.String(),
		Fingerprint: p.Fingerprint(),
	}
	return store.GetOrInstall(key, func(dest string) error {
		return files.CopyDir(candidate.Dir, dest, func(rel string, isDir bool) bool {
			return rel != ".git"
		})
	})
}

func (p *Path) Fingerprint() string {
	return p.Descriptor().Fingerprint()
}

func (p *Path) Descriptor() Descriptor {
	return Descriptor{Type: TypePath, Dir: p.Dir}
}

func (p *Path) String() string {
	return p.Descriptor().String()
}
