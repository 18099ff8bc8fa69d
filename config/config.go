// Package config loads the .shelf.yml configuration file. The loaded
// value is passed explicitly into the entry points that need it; there
// is no package-level state.
package config

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	goerrors "github.com/pkg/errors"

	"github.com/shelfhq/shelf-cli/api/chef"
	"github.com/shelfhq/shelf-cli/files"
)

// DefaultFilename is the configuration file looked up in the project
// directory and then in the user's home directory.
const DefaultFilename = ".shelf.yml"

// ChefConfig identifies the Chef server used by authenticated registry
// locations and by upload.
type ChefConfig struct {
	ServerURL  string `yaml:"server_url"`
	ClientName string `yaml:"client_name"`
	ClientKey  string `yaml:"client_key"`
}

// SSLConfig controls certificate verification for all HTTP clients.
type SSLConfig struct {
	Verify *bool `yaml:"verify"`
}

// Config is the full contents of a .shelf.yml.
type Config struct {
	Chef     ChefConfig `yaml:"chef"`
	SSL      SSLConfig  `yaml:"ssl"`
	CacheDir string     `yaml:"cache_dir"`
}

// VerifySSL reports whether certificate verification is enabled.
// Verification defaults to on; it must be disabled explicitly.
func (c Config) VerifySSL() bool {
	return c.SSL.Verify == nil || *c.SSL.Verify
}

// Credentials returns the Chef server credentials from the
// configuration, with environment variables taking precedence.
func (c Config) Credentials() chef.Credentials {
	creds := chef.Credentials{
		ServerURL:  c.Chef.ServerURL,
		ClientName: c.Chef.ClientName,
		ClientKey:  c.Chef.ClientKey,
	}
	if url := os.Getenv("SHELF_CHEF_SERVER_URL"); url != "" {
		creds.ServerURL = url
	}
	if name := os.Getenv("SHELF_CHEF_CLIENT_NAME"); name != "" {
		creds.ClientName = name
	}
	if key := os.Getenv("SHELF_CHEF_CLIENT_KEY"); key != "" {
		creds.ClientKey = key
	}
	return creds
}

// Load reads the configuration for a project in dir: an explicit
// filename wins, then dir/.shelf.yml, then ~/.shelf.yml. A missing
// file is not an error; the zero configuration is returned.
func Load(dir string, filename string) (Config, error) {
	if filename != "" {
		return read(filename)
	}

	candidates := []string{filepath.Join(dir, DefaultFilename)}
	if home, err := homedir.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultFilename))
	}
	for _, candidate := range candidates {
		ok, err := files.Exists(candidate)
		if err != nil {
			return Config{}, err
		}
		if ok {
			return read(candidate)
		}
	}
	return Config{}, nil
}

func read(filename string) (Config, error) {
	var c Config
	if err := files.ReadYAML(&c, filename); err != nil {
		return Config{}, goerrors.Wrapf(err, "could not parse configuration %s", filename)
	}
	return c, nil
}
