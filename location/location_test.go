package location_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfhq/shelf-cli/api"
	"github.com/shelfhq/shelf-cli/api/chef"
	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
	"github.com/shelfhq/shelf-cli/location"
)

func tempStore(t *testing.T) *cache.Store {
	t.Helper()
	root, err := ioutil.TempDir("", "shelf-cache-")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(root) })
	store, err := cache.NewStore(root)
	require.NoError(t, err)
	return store
}

func writeCookbookDir(t *testing.T, dir, name, version string, deps map[string]string) {
	t.Helper()
	md := cookbook.Metadata{Name: name, Version: version, Dependencies: deps}
	data, err := json.Marshal(md)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, cookbook.MetadataFile), data, 0644))
}

func cookbookTarball(t *testing.T, name, version string, deps map[string]string) []byte {
	t.Helper()
	src, err := ioutil.TempDir("", "shelf-tarball-src-")
	require.NoError(t, err)
	defer os.RemoveAll(src)
	root := filepath.Join(src, name)
	writeCookbookDir(t, root, name, version, deps)

	out := filepath.Join(src, name+".tar.gz")
	require.NoError(t, files.WriteTarGz(root, out))
	data, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	return data
}

func TestPathLocation(t *testing.T) {
	dir, err := ioutil.TempDir("", "shelf-path-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	writeCookbookDir(t, dir, "ntp", "1.0.0", map[string]string{"logrotate": ">= 0.0.0"})

	loc, err := location.NewPath(dir)
	require.NoError(t, err)

	candidates, err := loc.Fetch("ntp", cookbook.Constraint{})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "1.0.0", candidates[0].Version.String())

	// The wrong name is NotFound, not a constraint failure.
	_, err = loc.Fetch("mysql", cookbook.Constraint{})
	assert.Equal(t, errors.NotFound, errors.TypeOf(err))

	// The right name with an unsatisfiable constraint.
	_, err = loc.Fetch("ntp", cookbook.MustParseConstraint("> 2.0.0"))
	assert.Equal(t, errors.NoSatisfyingVersion, errors.TypeOf(err))

	store := tempStore(t)
	cb, err := loc.Install(candidates[0], store)
	require.NoError(t, err)
	assert.Equal(t, "ntp", cb.Name)
	assert.True(t, cb.Dependencies["logrotate"].SatisfiedBy(cb.Version))
	// The cached copy is owned by the store, not the source directory.
	assert.NotEqual(t, dir, cb.Path)
}

func TestSiteLocation(t *testing.T) {
	tarball := cookbookTarball(t, "nginx", "0.101.0", nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cookbooks/nginx":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"name": "nginx",
				"versions": {
					"0.99.0": "/tarballs/nginx-0.99.0.tar.gz",
					"0.101.0": "/tarballs/nginx-0.101.0.tar.gz",
					"0.101.2": "/tarballs/nginx-0.101.2.tar.gz"
				}
			}`))
		case "/tarballs/nginx-0.101.0.tar.gz":
			w.Write(tarball)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loc, err := location.NewSite(server.URL, api.NewClient(true))
	require.NoError(t, err)

	candidates, err := loc.Fetch("nginx", cookbook.MustParseConstraint("< 0.101.2"))
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// Sorted descending; the highest satisfying version first.
	assert.Equal(t, "0.101.0", candidates[0].Version.String())
	assert.Equal(t, "0.99.0", candidates[1].Version.String())

	store := tempStore(t)
	cb, err := loc.Install(candidates[0], store)
	require.NoError(t, err)
	assert.Equal(t, "nginx", cb.Name)
	assert.Equal(t, "0.101.0", cb.Version.String())

	_, err = loc.Fetch("unknown", cookbook.Constraint{})
	assert.Equal(t, errors.NotFound, errors.TypeOf(err))
}

func TestSiteInstallCorruptArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cookbooks/nginx":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"name": "nginx",
				"versions": {"0.101.0": "/tarballs/nginx-0.101.0.tar.gz"}
			}`))
		default:
			// Not a gzip stream, and much larger than the extractor
			// reads before failing.
			w.Write(bytes.Repeat([]byte("not a tarball "), 1<<14))
		}
	}))
	defer server.Close()

	loc, err := location.NewSite(server.URL, api.NewClient(true))
	require.NoError(t, err)

	candidates, err := loc.Fetch("nginx", cookbook.Constraint{})
	require.NoError(t, err)

	_, err = loc.Install(candidates[0], tempStore(t))
	assert.Error(t, err)
}

func TestRegistryLocation(t *testing.T) {
	tarball := cookbookTarball(t, "mysql", "2.1.0", map[string]string{"openssl": "~> 1.0"})
	universeCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/universe":
			universeCalls++
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"mysql": {
					"2.0.0": {"download_url": "/tarballs/mysql-2.0.0.tar.gz", "dependencies": {}},
					"2.1.0": {"download_url": "/tarballs/mysql-2.1.0.tar.gz", "dependencies": {"openssl": "~> 1.0"}}
				}
			}`))
		case "/tarballs/mysql-2.1.0.tar.gz":
			w.Write(tarball)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := chef.NewClient(chef.Credentials{ServerURL: server.URL}, api.NewClient(true))
	require.NoError(t, err)
	loc := location.NewRegistry(client)

	candidates, err := loc.Fetch("mysql", cookbook.Constraint{})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "2.1.0", candidates[0].Version.String())

	// The universe is fetched once per location instance.
	_, err = loc.Fetch("mysql", cookbook.Constraint{})
	require.NoError(t, err)
	assert.Equal(t, 1, universeCalls)

	_, err = loc.Fetch("absent", cookbook.Constraint{})
	assert.Equal(t, errors.NotFound, errors.TypeOf(err))
	_, err = loc.Fetch("mysql", cookbook.MustParseConstraint("> 3.0.0"))
	assert.Equal(t, errors.NoSatisfyingVersion, errors.TypeOf(err))

	store := tempStore(t)
	cb, err := loc.Install(candidates[0], store)
	require.NoError(t, err)
	assert.Equal(t, "mysql@2.1.0", cb.String())
	assert.Contains(t, cb.Dependencies, "openssl")
}

func TestDescriptorRoundTrip(t *testing.T) {
	factory := &location.Factory{
		HTTP:        api.NewClient(true),
		Credentials: chef.Credentials{ServerURL: "https://chef.example.com"},
	}

	git := location.NewGit("https://github.com/example/ssh_known_hosts2.git", "v1.2.0")
	rebuilt, err := factory.FromDescriptor(git.Descriptor())
	require.NoError(t, err)
	assert.Equal(t, git.Fingerprint(), rebuilt.Fingerprint())

	var desc location.Descriptor
	data, err := json.Marshal(git.Descriptor())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &desc))
	assert.Equal(t, git.Descriptor(), desc)
}

func TestFingerprintsDiffer(t *testing.T) {
	a := location.NewGit("https://example.com/repo.git", "main")
	b := location.NewGit("https://example.com/repo.git", "dev")
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Contains(t, a.String(), "git https://example.com/repo.git")
}
