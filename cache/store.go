// Package cache implements the on-disk artifact cache. Each distinct
// (name, version, location fingerprint) is fetched at most once per
// store and never silently overwritten.
package cache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/files"
)

// A Key identifies one cached artifact.
type Key struct {
	Name        string
	Version     string
	Fingerprint string
}

func (k Key) String() string {
	return k.Name + "-" + k.Version + "-" + k.Fingerprint
}

// A Store is a content-addressed cache of installed cookbooks rooted at
// one directory. Concurrent GetOrInstall calls for the same key share a
// single fetch; calls for distinct keys proceed independently.
type Store struct {
	root   string
	flight singleflight.Group

	mu     sync.Mutex
	loaded map[Key]*cookbook.Cookbook
}

// DefaultRoot returns the conventional cache location under the user's
// home directory.
func DefaultRoot() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".shelf", "cookbooks"), nil
}

// NewStore opens (creating if needed) the cache rooted at root.
func NewStore(root string) (*Store, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create cache root %s", root)
	}
	return &Store{
		root:   root,
		loaded: make(map[Key]*cookbook.Cookbook),
	}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(key Key) string {
	return filepath.Join(s.root, key.String())
}

// Get returns the cached artifact for key without fetching. The second
// return is false when the key is not in the cache.
func (s *Store) Get(key Key) (*cookbook.Cookbook, bool) {
	s.mu.Lock()
	if cb, ok := s.loaded[key]; ok {
		s.mu.Unlock()
		return cb, true
	}
	s.mu.Unlock()

	dir := s.path(key)
	ok, err := files.Exists(dir, cookbook.MetadataFile)
	if err != nil || !ok {
		return nil, false
	}
	cb, err := cookbook.FromPath(dir)
	if err != nil {
		log.WithField("dir", dir).WithError(err).Warn("ignoring unreadable cache entry")
		return nil, false
	}
	s.remember(key, cb)
	return cb, true
}

// GetOrInstall returns the artifact for key, invoking fetch to
// materialize it on a cache miss. The fetch callback receives an empty
// staging directory and must leave a complete artifact (including its
// metadata manifest) inside it. At most one fetch runs per key for the
// lifetime of the store; concurrent callers for the same key await the
// in-flight result.
func (s *Store) GetOrInstall(key Key, fetch func(dest string) error) (*cookbook.Cookbook, error) {
	result, err, _ := s.flight.Do(key.String(), func() (interface{}, error) {
		if cb, ok := s.Get(key); ok {
			return cb, nil
		}
		return s.install(key, fetch)
	})
	if err != nil {
		return nil, err
	}
	return result.(*cookbook.Cookbook), nil
}

func (s *Store) install(key Key, fetch func(dest string) error) (*cookbook.Cookbook, error) {
	staging, err := ioutil.TempDir(s.root, ".staging-"+key.Name+"-")
	if err != nil {
		return nil, errors.Wrap(err, "could not create staging directory")
	}
	defer os.RemoveAll(staging)

	if err := fetch(staging); err != nil {
		return nil, err
	}

	dir := s.path(key)
	// A concurrent process may have installed the same key. The existing
	// artifact wins; cached artifacts are never overwritten.
	if err := os.Rename(staging, dir); err != nil {
		if ok, _ := files.Exists(dir, cookbook.MetadataFile); !ok {
			return nil, errors.Wrapf(err, "could not commit %s into cache", key)
		}
	}

	cb, err := cookbook.FromPath(dir)
	if err != nil {
		return nil, err
	}
	log.WithField("cookbook", cb.String()).Debug("installed into cache")
	s.remember(key, cb)
	return cb, nil
}

func (s *Store) remember(key Key, cb *cookbook.Cookbook) {
	s.mu.Lock()
	s.loaded[key] = cb
	s.mu.Unlock()
}
