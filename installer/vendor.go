package installer

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/apex/log"
	goerrors "github.com/pkg/errors"

	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/files"
)

// Vendor resolves the project and copies every resolved cookbook into
// destination/<name>, honoring each cookbook's chefignore.
func (i *Installer) Vendor(destination string) (*Result, error) {
	result, err := i.Install()
	if err != nil {
		return nil, err
	}
	if _, err := cache.Export(result.Solution.Sorted(), destination); err != nil {
		return nil, err
	}
	return result, nil
}

// Package resolves the project, vendors it into a cookbooks/ tree, and
// writes the tree as a gzipped tarball at out.
func (i *Installer) Package(out string) (*Result, error) {
	staging, err := ioutil.TempDir("", "shelf-package")
	if err != nil {
		return nil, goerrors.Wrap(err, "could not create packaging directory")
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			log.WithError(err).Debug("could not remove packaging directory")
		}
	}()

	// The archive's single root component is cookbooks/, so extracting
	// it yields the same layout vendor produces.
	vendored := filepath.Join(staging, "cookbooks")
	result, err := i.Vendor(vendored)
	if err != nil {
		return nil, err
	}
	if err := files.WriteTarGz(vendored, out); err != nil {
		return nil, goerrors.Wrapf(err, "could not write package %s", out)
	}
	return result, nil
}
