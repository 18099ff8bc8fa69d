package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"

	"github.com/shelfhq/shelf-cli/config"
)

func TestLoadProjectConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "shelf-config")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	contents := `
chef:
  server_url: https://chef.example.com/organizations/acme
  client_name: deploy
  client_key: /etc/chef/deploy.pem
ssl:
  verify: false
cache_dir: /var/cache/shelf
`
	assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, config.DefaultFilename), []byte(contents), 0600))

	c, err := config.Load(dir, "")
	assert.NoError(t, err)
	assert.Equal(t, "https://chef.example.com/organizations/acme", c.Chef.ServerURL)
	assert.Equal(t, "deploy", c.Chef.ClientName)
	assert.False(t, c.VerifySSL())
	assert.Equal(t, "/var/cache/shelf", c.CacheDir)
}

func TestMissingConfigIsNotAnError(t *testing.T) {
	dir, err := ioutil.TempDir("", "shelf-config")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	// Point HOME at the empty directory too, so no user-level
	// .shelf.yml leaks into the test.
	restore := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	homedir.Reset()
	defer func() {
		os.Setenv("HOME", restore)
		homedir.Reset()
	}()

	c, err := config.Load(dir, "")
	assert.NoError(t, err)
	assert.True(t, c.VerifySSL())
	assert.Empty(t, c.Chef.ServerURL)
}

func TestEnvironmentOverridesCredentials(t *testing.T) {
	os.Setenv("SHELF_CHEF_SERVER_URL", "https://override.example.com")
	defer os.Unsetenv("SHELF_CHEF_SERVER_URL")

	c := config.Config{}
	c.Chef.ServerURL = "https://original.example.com"
	c.Chef.ClientName = "deploy"

	creds := c.Credentials()
	assert.Equal(t, "https://override.example.com", creds.ServerURL)
	assert.Equal(t, "deploy", creds.ClientName)
}
