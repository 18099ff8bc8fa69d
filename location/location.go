// Package location implements the source locations a cookbook may be
// fetched from: a Chef-compatible registry, an HTTP site index, a git
// repository, or a local path.
package location

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/cespare/xxhash/v2"

	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
)

// A Candidate is one concrete version a location can serve.
type Candidate struct {
	Name    string
	Version semver.Version

	// URL is the artifact download endpoint for remote locations; Dir
	// is the artifact directory for local ones. Exactly one is set.
	URL string
	Dir string
}

// A Location can enumerate and install cookbook versions. Fetch returns
// the versions satisfying the constraint sorted newest-first, failing
// with a NotFound error when the location has no cookbook by that name
// and NoSatisfyingVersion when it has the name but no matching version.
// Install materializes a candidate through the cache and is idempotent:
// an already-cached (name, version, fingerprint) is returned without
// re-fetching.
type Location interface {
	Fetch(name string, constraint cookbook.Constraint) ([]Candidate, error)
	Install(candidate Candidate, store *cache.Store) (*cookbook.Cookbook, error)

	// Fingerprint is a stable identifier of the location used in cache
	// keys, so the same name and version from two locations never
	// collide.
	Fingerprint() string

	// Descriptor is the serializable form persisted in the lockfile.
	Descriptor() Descriptor

	String() string
}

// Known descriptor types.
const (
	TypeRegistry = "registry"
	TypeSite     = "site"
	TypeGit      = "git"
	TypePath     = "path"
)

// A Descriptor is the persisted form of a Location.
type Descriptor struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
	Ref  string `json:"ref,omitempty"`
	Dir  string `json:"dir,omitempty"`
}

func (d Descriptor) String() string {
	switch d.Type {
	case TypeGit:
		if d.Ref != "" {
			return fmt.Sprintf("git %s (at %s)", d.URL, d.Ref)
		}
		return "git " + d.URL
	case TypePath:
		return "path " + d.Dir
	case TypeSite:
		return "site " + d.URL
	case TypeRegistry:
		return "registry " + d.URL
	}
	return "unknown location"
}

// Fingerprint derives a stable cache-key component from the
// descriptor, so the same name and version from two locations never
// collide in the cache.
func (d Descriptor) Fingerprint() string {
	h := xxhash.New()
	h.WriteString(d.Type)
	h.Write([]byte{0})
	h.WriteString(d.URL)
	h.Write([]byte{0})
	h.WriteString(d.Ref)
	h.Write([]byte{0})
	h.WriteString(d.Dir)
	return fmt.Sprintf("%016x", h.Sum64())
}

func errNotFound(name string, loc Location) error {
	return &errors.Error{
		Type:    errors.NotFound,
		Message: fmt.Sprintf("%s has no cookbook named %s", loc, name),
	}
}

func errNoSatisfyingVersion(name string, constraint cookbook.Constraint, loc Location) error {
	return &errors.Error{
		Type:    errors.NoSatisfyingVersion,
		Message: fmt.Sprintf("%s has no version of %s satisfying %s", loc, name, constraint),
	}
}
