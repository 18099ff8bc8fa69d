package chef

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/apex/log"

	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
)

// ValidateUpload checks that every attribute required for uploading is
// configured. The first missing attribute is reported by name, before
// any network call is attempted.
func ValidateUpload(creds Credentials) error {
	missing := ""
	switch {
	case creds.ServerURL == "":
		missing = "chef.server_url"
	case creds.ClientName == "":
		missing = "chef.client_name"
	case creds.ClientKey == "":
		missing = "chef.client_key"
	}
	if missing != "" {
		return &errors.Error{
			Type:            errors.MissingConfiguration,
			Message:         "missing configuration attribute: " + missing,
			Troubleshooting: "Set " + missing + " in .shelf.yml before uploading.",
		}
	}
	return nil
}

// Upload publishes each resolved cookbook to the server as a gzipped
// tarball, one request per cookbook.
func (c *Client) Upload(cookbooks []*cookbook.Cookbook) error {
	if err := ValidateUpload(c.creds); err != nil {
		return err
	}

	for _, cb := range cookbooks {
		if err := c.uploadOne(cb); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) uploadOne(cb *cookbook.Cookbook) error {
	tmp, err := ioutil.TempFile("", "shelf-upload-"+cb.Name+"-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := files.WriteTarGz(cb.Path, tmp.Name()); err != nil {
		return err
	}
	payload, err := ioutil.ReadFile(tmp.Name())
	if err != nil {
		return err
	}

	endpoint, err := c.server.Parse(fmt.Sprintf("api/v1/cookbooks/%s/versions/%s", cb.Name, cb.Version))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"cookbook": cb.String(),
		"endpoint": endpoint.String(),
	}).Debug("uploading cookbook")

	res, code, err := c.http.Post(endpoint, c.creds.ClientKey, payload)
	if err != nil {
		return &errors.Error{
			Type:    errors.DownloadFailure,
			Cause:   err,
			Message: "could not upload " + cb.String(),
		}
	}
	if code != 200 && code != 201 {
		return &errors.Error{
			Type:    errors.DownloadFailure,
			Message: fmt.Sprintf("upload of %s failed with HTTP %d: %s", cb.String(), code, res),
		}
	}
	return nil
}
