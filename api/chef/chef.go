// Package chef provides a high-level interface to a Chef-compatible
// cookbook server: the universe listing used for resolution, cookbook
// downloads, and uploads of resolved cookbooks.
package chef

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/apex/log"

	"github.com/shelfhq/shelf-cli/api"
	"github.com/shelfhq/shelf-cli/errors"
)

// Credentials identify a client against a cookbook server. Uploading
// requires all three attributes; fetching requires only the server URL.
type Credentials struct {
	ServerURL  string
	ClientName string
	ClientKey  string
}

// A Client talks to one cookbook server.
type Client struct {
	creds  Credentials
	server *url.URL
	http   *api.Client
}

// NewClient constructs a Client for the given server. The HTTP client
// may be shared across locations.
func NewClient(creds Credentials, httpClient *api.Client) (*Client, error) {
	if creds.ServerURL == "" {
		return nil, &errors.Error{
			Type:    errors.MissingConfiguration,
			Message: "missing configuration attribute: chef.server_url",
		}
	}
	// Relative references resolve against the full endpoint path only
	// when it ends with a slash.
	base := creds.ServerURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	server, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %s", creds.ServerURL, err.Error())
	}
	return &Client{creds: creds, server: server, http: httpClient}, nil
}

// ServerURL returns the configured server endpoint.
func (c *Client) ServerURL() string {
	return c.creds.ServerURL
}

// A UniverseVersion describes one published cookbook version.
type UniverseVersion struct {
	LocationType string            `json:"location_type"`
	LocationPath string            `json:"location_path"`
	DownloadURL  string            `json:"download_url"`
	Dependencies map[string]string `json:"dependencies"`
}

// Universe fetches the server's full cookbook index: cookbook name to
// version string to version descriptor.
func (c *Client) Universe() (map[string]map[string]UniverseVersion, error) {
	endpoint, err := c.server.Parse("universe")
	if err != nil {
		return nil, err
	}

	var universe map[string]map[string]UniverseVersion
	code, err := c.http.GetJSON(endpoint, c.creds.ClientKey, nil, &universe)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.DownloadFailure,
			Cause:   err,
			Message: "could not fetch universe from " + c.creds.ServerURL,
		}
	}
	if code != 200 {
		return nil, &errors.Error{
			Type:    errors.DownloadFailure,
			Message: fmt.Sprintf("universe request to %s failed with HTTP %d", c.creds.ServerURL, code),
		}
	}

	log.WithField("cookbooks", len(universe)).Debug("fetched universe")
	return universe, nil
}

// Download streams the tarball at rawurl into w. Relative URLs are
// resolved against the server endpoint.
func (c *Client) Download(rawurl string, w io.Writer) error {
	endpoint, err := c.server.Parse(rawurl)
	if err != nil {
		return err
	}
	if err := c.http.Download(endpoint, w); err != nil {
		return &errors.Error{
			Type:    errors.DownloadFailure,
			Cause:   err,
			Message: "could not download " + endpoint.String(),
		}
	}
	return nil
}
