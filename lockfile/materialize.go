package lockfile

import (
	"fmt"

	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/resolver"
)

// ErrCacheMiss reports that a locked cookbook is not present in the
// artifact cache, so the locked set cannot be reused without fetching.
type ErrCacheMiss struct {
	Name    string
	Version string
}

func (e *ErrCacheMiss) Error() string {
	return fmt.Sprintf("locked cookbook %s@%s is not cached", e.Name, e.Version)
}

// Materialize rebuilds the locked solution entirely from the artifact
// cache. No locations are contacted: every entry's cache key is
// derived from the lockfile alone. A missing cache entry returns
// ErrCacheMiss, and the caller falls back to a full resolve.
func Materialize(lock *Lockfile, store *cache.Store) (*resolver.Solution, error) {
	solution := &resolver.Solution{Cookbooks: make(map[string]*cookbook.Cookbook)}
	for _, entry := range lock.Entries {
		key := cache.Key{
			Name:        entry.Name,
			Version:     entry.Version,
			Fingerprint: entry.Location.Fingerprint(),
		}
		cb, ok := store.Get(key)
		if !ok {
			return nil, &ErrCacheMiss{Name: entry.Name, Version: entry.Version}
		}
		solution.Cookbooks[cb.Name] = cb
	}
	return solution, nil
}
