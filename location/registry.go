package location

import (
	"io"
	"sort"
	"sync"

	"github.com/shelfhq/shelf-cli/api/chef"
	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/files"
)

// A Registry location serves cookbooks from a Chef-compatible server.
// The server is authoritative for every name it lists; its universe
// index is fetched once per location instance.
type Registry struct {
	client *chef.Client

	universeOnce sync.Once
	universe     map[string]map[string]chef.UniverseVersion
	universeErr  error
}

// NewRegistry constructs a Registry location backed by the given
// server client.
func NewRegistry(client *chef.Client) *Registry {
	return &Registry{client: client}
}

func (r *Registry) index() (map[string]map[string]chef.UniverseVersion, error) {
	r.universeOnce.Do(func() {
		r.universe, r.universeErr = r.client.Universe()
	})
	return r.universe, r.universeErr
}

func (r *Registry) Fetch(name string, constraint cookbook.Constraint) ([]Candidate, error) {
	universe, err := r.index()
	if err != nil {
		return nil, err
	}

	released, ok := universe[name]
	if !ok || len(released) == 0 {
		return nil, errNotFound(name, r)
	}

	var candidates []Candidate
	for raw, entry := range released {
		version, err := cookbook.ParseVersion(raw)
		if err != nil {
			// A malformed version on the server should not poison every
			// other release of the cookbook.
			continue
		}
		if !constraint.SatisfiedBy(version) {
			continue
		}
		candidates = append(candidates, Candidate{
			Name:    name,
			Version: version,
			URL:     entry.DownloadURL,
		})
	}
	if len(candidates) == 0 {
		return nil, errNoSatisfyingVersion(name, constraint, r)
	}

	sortCandidates(candidates)
	return candidates, nil
}

func (r *Registry) Install(candidate Candidate, store *cache.Store) (*cookbook.Cookbook, error) {
	key := cache.Key{
		Name:        candidate.Name,
		Version:     candidate.Version.String(),
		Fingerprint: r.Fingerprint(),
	}
	return store.GetOrInstall(key, func(dest string) error {
		return downloadInto(r.client, candidate.URL, dest)
	})
}

func (r *Registry) Fingerprint() string {
	return r.Descriptor().Fingerprint()
}

func (r *Registry) Descriptor() Descriptor {
	return Descriptor{Type: TypeRegistry, URL: r.client.ServerURL()}
}

func (r *Registry) String() string {
	return r.Descriptor().String()
}

// sortCandidates orders candidates newest-first.
func sortCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
}

// downloadInto streams a tarball from the client and unpacks it into
// dest through a pipe.
func downloadInto(client *chef.Client, url, dest string) error {
	pr, pw := io.Pipe()
	// Closing the read side unblocks the writer if extraction fails
	// before the stream is drained.
	defer pr.Close()
	go func() {
		pw.CloseWithError(client.Download(url, pw))
	}()
	return files.ExtractTarGz(pr, dest)
}
