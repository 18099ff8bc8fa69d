package cookbook

import (
	"github.com/pkg/errors"

	"github.com/shelfhq/shelf-cli/files"
)

// MetadataFile is the manifest every cookbook artifact carries at its
// root. Its dependencies are what make resolution transitive.
const MetadataFile = "metadata.json"

// Metadata is the parsed contents of a cookbook manifest.
type Metadata struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description,omitempty"`
	Maintainer   string            `json:"maintainer,omitempty"`
	License      string            `json:"license,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ReadMetadata parses the manifest at the root of dir.
func ReadMetadata(dir string) (Metadata, error) {
	var md Metadata
	if err := files.ReadJSON(&md, dir, MetadataFile); err != nil {
		return Metadata{}, errors.Wrapf(err, "could not read cookbook metadata in %s", dir)
	}
	if md.Name == "" {
		return Metadata{}, errors.Errorf("cookbook metadata in %s has no name", dir)
	}
	if md.Version == "" {
		return Metadata{}, errors.Errorf("cookbook metadata in %s has no version", dir)
	}
	return md, nil
}

// ParsedDependencies parses the manifest's constraint expressions,
// keyed by dependency name.
func (md Metadata) ParsedDependencies() (map[string]Constraint, error) {
	deps := make(map[string]Constraint, len(md.Dependencies))
	for name, raw := range md.Dependencies {
		c, err := ParseConstraint(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "cookbook %s has an invalid constraint on %s", md.Name, name)
		}
		deps[name] = c
	}
	return deps, nil
}
