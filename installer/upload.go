package installer

import (
	"github.com/shelfhq/shelf-cli/api/chef"
)

// Upload resolves the project and uploads every resolved cookbook to
// the configured Chef server. Credential validation happens before any
// cookbook is resolved or packaged, so an unconfigured client fails
// fast.
func (i *Installer) Upload() (*Result, error) {
	creds := i.factory.Credentials
	if err := chef.ValidateUpload(creds); err != nil {
		return nil, err
	}
	client, err := chef.NewClient(creds, i.factory.HTTP)
	if err != nil {
		return nil, err
	}

	result, err := i.Install()
	if err != nil {
		return nil, err
	}
	if err := client.Upload(result.Solution.Sorted()); err != nil {
		return nil, err
	}
	return result, nil
}
