// Package shelffile reads and validates the Shelffile, the TOML
// declaration of a project's cookbook dependencies.
package shelffile

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	goerrors "github.com/pkg/errors"

	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
	"github.com/shelfhq/shelf-cli/location"
)

// DefaultName is the declaration file's filename.
const DefaultName = "Shelffile"

// A Dependency is one declared cookbook requirement. A nil Location
// means the entry resolves through the default source. Groups is never
// empty; entries declared outside a group belong to "default".
type Dependency struct {
	Name       string
	Constraint cookbook.Constraint
	Groups     []string
	Location   *location.Descriptor
}

// A Shelffile is a parsed declaration: source configuration plus the
// ordered dependency entries. Raw holds the exact file bytes, which is
// what the lockfile fingerprint is computed from.
type Shelffile struct {
	Registry     string
	Site         string
	Metadata     bool
	Dependencies []Dependency
	Raw          []byte
	Dir          string
}

// Sources returns the dependencies whose groups pass the only/except
// filters. Supplying both filters is rejected with
// InvalidFilterOptions. An empty result is valid.
func (s *Shelffile) Sources(only []string, except []string) ([]Dependency, error) {
	if len(only) > 0 && len(except) > 0 {
		return nil, &errors.Error{
			Type:    errors.InvalidFilterOptions,
			Message: "cannot filter by both --only and --except groups",
			Troubleshooting: "Pass --only to keep just the named groups, or --except to drop them. " +
				"The two filters are complementary and cannot be combined.",
		}
	}
	var selected []Dependency
	for _, dep := range s.Dependencies {
		if matchesGroups(dep.Groups, only, except) {
			selected = append(selected, dep)
		}
	}
	return selected, nil
}

func matchesGroups(groups []string, only []string, except []string) bool {
	if len(only) > 0 {
		for _, g := range groups {
			if contains(only, g) {
				return true
			}
		}
		return false
	}
	for _, g := range groups {
		if contains(except, g) {
			return false
		}
	}
	return true
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// rawDependency accepts either the shorthand string form
// (name = "~> 1.0") or the table form with location options.
type rawDependency struct {
	Version string
	Git     string
	Ref     string
	Path    string
	Site    string
	Group   []string
}

func (d *rawDependency) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case string:
		d.Version = value
		return nil
	case map[string]interface{}:
		return d.fromTable(value)
	}
	return fmt.Errorf("dependency must be a version string or a table, got %T", v)
}

func (d *rawDependency) fromTable(table map[string]interface{}) error {
	for key, raw := range table {
		switch key {
		case "version":
			if err := stringField(key, raw, &d.Version); err != nil {
				return err
			}
		case "git":
			if err := stringField(key, raw, &d.Git); err != nil {
				return err
			}
		case "ref":
			if err := stringField(key, raw, &d.Ref); err != nil {
				return err
			}
		case "path":
			if err := stringField(key, raw, &d.Path); err != nil {
				return err
			}
		case "site":
			if err := stringField(key, raw, &d.Site); err != nil {
				return err
			}
		case "group":
			groups, err := stringList(raw)
			if err != nil {
				return goerrors.Wrap(err, "group")
			}
			d.Group = groups
		default:
			return fmt.Errorf("unknown dependency option %q", key)
		}
	}
	return nil
}

func stringField(key string, raw interface{}, dest *string) error {
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%s must be a string, got %T", key, raw)
	}
	*dest = s
	return nil
}

func stringList(raw interface{}) ([]string, error) {
	switch value := raw.(type) {
	case string:
		return []string{value}, nil
	case []interface{}:
		list := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", item)
			}
			list = append(list, s)
		}
		return list, nil
	}
	return nil, fmt.Errorf("expected a string or list of strings, got %T", raw)
}

type rawShelffile struct {
	Registry     string                   `toml:"registry"`
	Site         string                   `toml:"site"`
	Metadata     bool                     `toml:"metadata"`
	Dependencies map[string]rawDependency `toml:"dependencies"`
}

// Read loads and validates the Shelffile in dir. A missing file is a
// DeclarationNotFound error.
func Read(dir string) (*Shelffile, error) {
	ok, err := files.Exists(dir, DefaultName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errors.Error{
			Type:    errors.DeclarationNotFound,
			Message: fmt.Sprintf("no %s found in %s", DefaultName, dir),
			Troubleshooting: "Run this command from the directory containing your " + DefaultName +
				", or create one declaring your cookbook dependencies.",
		}
	}

	raw, err := files.Read(dir, DefaultName)
	if err != nil {
		return nil, err
	}
	var parsed rawShelffile
	if err := toml.Unmarshal(raw, &parsed); err != nil {
		return nil, goerrors.Wrapf(err, "could not parse %s", DefaultName)
	}

	builder := NewBuilder()
	if parsed.Registry != "" {
		builder.UseRegistry(parsed.Registry)
	}
	if parsed.Site != "" {
		builder.UseSite(parsed.Site)
	}

	// TOML maps are unordered; declare alphabetically so duplicate
	// detection against metadata entries is deterministic.
	names := make([]string, 0, len(parsed.Dependencies))
	for name := range parsed.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := declareRaw(builder, dir, name, parsed.Dependencies[name]); err != nil {
			return nil, err
		}
	}

	if parsed.Metadata {
		if err := builder.UseMetadata(dir); err != nil {
			return nil, err
		}
	}

	file := builder.File()
	file.Raw = raw
	file.Dir = dir
	return file, nil
}

func declareRaw(builder *Builder, dir string, name string, raw rawDependency) error {
	var constraint cookbook.Constraint
	if raw.Version != "" {
		parsed, err := cookbook.ParseConstraint(raw.Version)
		if err != nil {
			return goerrors.Wrapf(err, "dependency %s", name)
		}
		constraint = parsed
	}

	var opts []Option
	if len(raw.Group) > 0 {
		opts = append(opts, WithGroups(raw.Group...))
	}
	switch {
	case raw.Git != "":
		opts = append(opts, WithLocation(location.Descriptor{
			Type: location.TypeGit,
			URL:  raw.Git,
			Ref:  raw.Ref,
		}))
	case raw.Path != "":
		path := raw.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		opts = append(opts, WithLocation(location.Descriptor{
			Type: location.TypePath,
			Dir:  path,
		}))
	case raw.Site != "":
		opts = append(opts, WithLocation(location.Descriptor{
			Type: location.TypeSite,
			URL:  raw.Site,
		}))
	}

	return builder.Declare(name, constraint, opts...)
}
