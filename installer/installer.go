// Package installer orchestrates a full run: locate the Shelffile,
// reconcile it with the lockfile, resolve, and persist the result.
package installer

import (
	"path/filepath"

	"github.com/apex/log"

	"github.com/shelfhq/shelf-cli/api"
	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/config"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
	"github.com/shelfhq/shelf-cli/location"
	"github.com/shelfhq/shelf-cli/lockfile"
	"github.com/shelfhq/shelf-cli/resolver"
	"github.com/shelfhq/shelf-cli/shelffile"
)

// PublicSupermarket is the fallback default source, used when neither
// the Shelffile nor the configuration names a server.
const PublicSupermarket = "https://supermarket.chef.io"

// Options configures a run.
type Options struct {
	// Dir is where the Shelffile search starts. Ancestor directories
	// are searched upwards, like version control roots.
	Dir string

	// ConfigFile overrides the .shelf.yml lookup when non-empty.
	ConfigFile string

	// Only and Except filter declared entries by group. Supplying both
	// is rejected.
	Only   []string
	Except []string

	// Update lists names whose lockfile pins are discarded before
	// resolution. Used by the update command.
	Update []string

	Workers int
}

// An Installer wires the store, location factory, and configuration
// for one project.
type Installer struct {
	conf    config.Config
	store   *cache.Store
	factory *location.Factory
	opts    Options
}

// A Result is everything a finished run produced.
type Result struct {
	File     *shelffile.Shelffile
	Solution *resolver.Solution
	Lockfile *lockfile.Lockfile

	// Reused reports that the lockfile fingerprint matched and the
	// solution was materialized from the cache without any fetches.
	Reused bool
}

// New builds an Installer for the project at opts.Dir.
func New(opts Options) (*Installer, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	conf, err := config.Load(opts.Dir, opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	root := conf.CacheDir
	if root == "" {
		root, err = cache.DefaultRoot()
		if err != nil {
			return nil, err
		}
	}
	store, err := cache.NewStore(root)
	if err != nil {
		return nil, err
	}

	factory := &location.Factory{
		HTTP:        api.NewClient(conf.VerifySSL()),
		Credentials: conf.Credentials(),
	}
	return &Installer{conf: conf, store: store, factory: factory, opts: opts}, nil
}

// Store exposes the artifact cache, shared with collaborators such as
// vendoring.
func (i *Installer) Store() *cache.Store {
	return i.store
}

// projectDir finds the directory containing the Shelffile, searching
// upwards from the starting directory.
func (i *Installer) projectDir() (string, error) {
	dir, err := files.FindUp(i.opts.Dir, func(dir string) (bool, error) {
		return files.Exists(dir, shelffile.DefaultName)
	})
	if err == files.ErrNotFoundUpward {
		abs, absErr := filepath.Abs(i.opts.Dir)
		if absErr != nil {
			abs = i.opts.Dir
		}
		// Reading the starting directory yields the canonical
		// DeclarationNotFound error.
		return abs, nil
	}
	return dir, err
}

// ReadLockfile loads the project's current lockfile. A missing file is
// lockfile.ErrNoLockfile.
func (i *Installer) ReadLockfile() (*lockfile.Lockfile, error) {
	dir, err := i.projectDir()
	if err != nil {
		return nil, err
	}
	return lockfile.Read(dir, lockfile.DefaultName)
}

// Install runs the full pipeline: read and filter the declaration,
// merge the lockfile, resolve, and write the new lockfile back. A
// failed lockfile write is reported as a warning; the resolution
// itself already succeeded.
func (i *Installer) Install() (*Result, error) {
	// Git locations clone into temp directories; drop them once the
	// cache holds the installed artifacts.
	defer i.factory.Cleanup()

	dir, err := i.projectDir()
	if err != nil {
		return nil, err
	}
	file, err := shelffile.Read(dir)
	if err != nil {
		return nil, err
	}
	selected, err := file.Sources(i.opts.Only, i.opts.Except)
	if err != nil {
		return nil, err
	}

	defaultLoc, err := i.defaultLocation(file)
	if err != nil {
		return nil, err
	}
	requirements, err := i.requirements(selected)
	if err != nil {
		return nil, err
	}

	fingerprint := lockfile.Fingerprint(file.Raw)
	lock, err := lockfile.Read(dir, lockfile.DefaultName)
	if err == lockfile.ErrNoLockfile {
		lock = nil
	} else if err != nil {
		return nil, err
	}

	merged, reuse := lockfile.Reconcile(lock, requirements, fingerprint, i.opts.Update)
	if reuse {
		solution, err := lockfile.Materialize(lock, i.store)
		if err == nil {
			return &Result{File: file, Solution: solution, Lockfile: lock, Reused: true}, nil
		}
		if _, miss := err.(*lockfile.ErrCacheMiss); !miss {
			return nil, err
		}
		log.WithError(err).Debug("lockfile reuse needs a fetch, resolving with pins")
		merged, _ = lockfile.Reconcile(lock, requirements, "", nil)
	}

	res := resolver.Resolver{Default: defaultLoc, Store: i.store, Workers: i.opts.Workers}
	solution, err := res.Resolve(merged)
	if err != nil {
		return nil, err
	}

	newLock := lockfile.FromSolution(fingerprint, solution, defaultLoc)
	if err := newLock.Write(filepath.Join(dir, lockfile.DefaultName)); err != nil {
		if !errors.Warning(err) {
			return nil, err
		}
		log.WithError(err).Warn(errors.LockWarningMessage)
	}
	return &Result{File: file, Solution: solution, Lockfile: newLock}, nil
}

// defaultLocation picks the source used by entries that declare none:
// the Shelffile's site or registry when present, then the configured
// server, then the public supermarket.
func (i *Installer) defaultLocation(file *shelffile.Shelffile) (location.Location, error) {
	switch {
	case file.Site != "":
		return i.factory.FromDescriptor(location.Descriptor{Type: location.TypeSite, URL: file.Site})
	case file.Registry != "":
		return i.factory.FromDescriptor(location.Descriptor{Type: location.TypeRegistry, URL: file.Registry})
	case i.factory.Credentials.ServerURL != "":
		return i.factory.DefaultRegistry()
	}
	return i.factory.FromDescriptor(location.Descriptor{Type: location.TypeRegistry, URL: PublicSupermarket})
}

// requirements converts declared entries into resolver requirements,
// constructing each explicit location once.
func (i *Installer) requirements(deps []shelffile.Dependency) ([]resolver.Requirement, error) {
	requirements := make([]resolver.Requirement, 0, len(deps))
	for _, dep := range deps {
		req := resolver.Requirement{
			Name:       dep.Name,
			Constraint: dep.Constraint,
			Groups:     dep.Groups,
			DeclaredBy: shelffile.DefaultName,
		}
		if dep.Location != nil {
			loc, err := i.factory.FromDescriptor(*dep.Location)
			if err != nil {
				return nil, err
			}
			req.Location = loc
		}
		requirements = append(requirements, req)
	}
	return requirements, nil
}
