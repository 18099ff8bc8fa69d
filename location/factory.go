package location

import (
	"fmt"
	"sync"

	"github.com/shelfhq/shelf-cli/api"
	"github.com/shelfhq/shelf-cli/api/chef"
)

// A Factory rebuilds Locations from persisted descriptors and supplies
// the default registry. It carries the shared HTTP client and the
// configured server credentials, so no package-level state is needed.
// Git locations it hands out are tracked so their temporary clones can
// be removed through Cleanup.
type Factory struct {
	HTTP        *api.Client
	Credentials chef.Credentials

	mu   sync.Mutex
	gits []*Git
}

// DefaultRegistry returns the Registry location for the configured
// server, which serves every entry that names no explicit location.
func (f *Factory) DefaultRegistry() (Location, error) {
	client, err := chef.NewClient(f.Credentials, f.HTTP)
	if err != nil {
		return nil, err
	}
	return NewRegistry(client), nil
}

// FromDescriptor reconstructs the Location a descriptor was persisted
// from. Registry descriptors matching the configured server reuse its
// credentials; foreign registries are reached unauthenticated.
func (f *Factory) FromDescriptor(d Descriptor) (Location, error) {
	switch d.Type {
	case TypePath:
		return NewPath(d.Dir)
	case TypeGit:
		g := NewGit(d.URL, d.Ref)
		f.mu.Lock()
		f.gits = append(f.gits, g)
		f.mu.Unlock()
		return g, nil
	case TypeSite:
		return NewSite(d.URL, f.HTTP)
	case TypeRegistry:
		creds := chef.Credentials{ServerURL: d.URL}
		if d.URL == f.Credentials.ServerURL {
			creds = f.Credentials
		}
		client, err := chef.NewClient(creds, f.HTTP)
		if err != nil {
			return nil, err
		}
		return NewRegistry(client), nil
	}
	return nil, fmt.Errorf("unknown location type %q", d.Type)
}

// Cleanup removes the temporary clones of every Git location this
// factory has produced.
func (f *Factory) Cleanup() {
	f.mu.Lock()
	gits := f.gits
	f.gits = nil
	f.mu.Unlock()
	for _, g := range gits {
		g.Cleanup()
	}
}
