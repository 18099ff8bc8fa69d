package cookbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/blang/semver"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// A Cookbook is a cached artifact: a concrete named version whose files
// live at a path owned by the artifact cache. Cookbooks are immutable
// once created.
type Cookbook struct {
	Name         string
	Version      semver.Version
	Path         string
	Dependencies map[string]Constraint
	Checksum     string
}

// FromPath reads the artifact rooted at dir into a Cookbook.
func FromPath(dir string) (*Cookbook, error) {
	md, err := ReadMetadata(dir)
	if err != nil {
		return nil, err
	}
	version, err := ParseVersion(md.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "cookbook %s", md.Name)
	}
	deps, err := md.ParsedDependencies()
	if err != nil {
		return nil, err
	}
	checksum, err := DirectoryChecksum(dir)
	if err != nil {
		return nil, err
	}
	return &Cookbook{
		Name:         md.Name,
		Version:      version,
		Path:         dir,
		Dependencies: deps,
		Checksum:     checksum,
	}, nil
}

func (c *Cookbook) String() string {
	return c.Name + "@" + c.Version.String()
}

// DirectoryChecksum computes a stable content hash of every regular
// file under dir, in path order.
func DirectoryChecksum(dir string) (string, error) {
	h := xxhash.New()

	var names []string
	err := filepath.Walk(dir, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not walk %s", dir)
	}
	sort.Strings(names)

	for _, name := range names {
		rel, err := filepath.Rel(dir, name)
		if err != nil {
			return "", err
		}
		h.WriteString(filepath.ToSlash(rel))
		h.Write([]byte{0})
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", err
		}
		f.Close()
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}
