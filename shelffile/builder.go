package shelffile

import (
	"fmt"

	goerrors "github.com/pkg/errors"

	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
	"github.com/shelfhq/shelf-cli/location"
)

// DefaultGroup tags entries declared outside any group.
const DefaultGroup = "default"

// An Option adjusts a single declaration.
type Option func(*Dependency)

// WithGroups tags the entry with the given groups instead of the
// default group.
func WithGroups(groups ...string) Option {
	return func(d *Dependency) {
		d.Groups = groups
	}
}

// WithLocation pins the entry to an explicit source instead of the
// default one.
func WithLocation(desc location.Descriptor) Option {
	return func(d *Dependency) {
		d.Location = &desc
	}
}

// A Builder accumulates dependency declarations and rejects conflicts
// as they are made, so a bad declaration is reported at its own site
// rather than surfacing later during resolution.
type Builder struct {
	file Shelffile
	seen map[string]bool
}

func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]bool)}
}

// UseRegistry sets the default source to an authenticated registry.
func (b *Builder) UseRegistry(url string) {
	b.file.Registry = url
	b.file.Site = ""
}

// UseSite sets the default source to an unauthenticated site index.
func (b *Builder) UseSite(url string) {
	b.file.Site = url
	b.file.Registry = ""
}

// Declare adds one dependency entry. Declaring a name twice is a
// DuplicateSource error, reported immediately.
func (b *Builder) Declare(name string, constraint cookbook.Constraint, opts ...Option) error {
	if name == "" {
		return goerrors.New("dependency name must not be empty")
	}
	if b.seen[name] {
		return &errors.Error{
			Type:            errors.DuplicateSource,
			Message:         fmt.Sprintf("cookbook %s is declared more than once", name),
			Troubleshooting: "Each cookbook may be declared a single time. Remove the duplicate entry.",
		}
	}

	dep := Dependency{
		Name:       name,
		Constraint: constraint,
		Groups:     []string{DefaultGroup},
	}
	for _, opt := range opts {
		opt(&dep)
	}
	if len(dep.Groups) == 0 {
		dep.Groups = []string{DefaultGroup}
	}

	b.seen[name] = true
	b.file.Dependencies = append(b.file.Dependencies, dep)
	return nil
}

// UseMetadata declares the cookbook being developed in dir as a path
// entry, named from its metadata.json. Its dependencies are not
// declared here; they enter resolution transitively through the
// installed artifact's manifest, where they merge with explicit
// entries instead of colliding with them.
func (b *Builder) UseMetadata(dir string) error {
	ok, err := files.Exists(dir, cookbook.MetadataFile)
	if err != nil {
		return err
	}
	if !ok {
		return &errors.Error{
			Type:    errors.DeclarationNotFound,
			Message: fmt.Sprintf("metadata = true but no %s found in %s", cookbook.MetadataFile, dir),
			Troubleshooting: "The metadata option declares the cookbook being developed in this " +
				"directory, which requires its " + cookbook.MetadataFile + " to be present.",
		}
	}

	metadata, err := cookbook.ReadMetadata(dir)
	if err != nil {
		return err
	}
	// Surface a malformed manifest at declaration time rather than
	// mid-resolution.
	if _, err := metadata.ParsedDependencies(); err != nil {
		return err
	}

	err = b.Declare(metadata.Name, cookbook.Constraint{}, WithLocation(location.Descriptor{
		Type: location.TypePath,
		Dir:  dir,
	}))
	if err != nil {
		return err
	}
	b.file.Metadata = true
	return nil
}

// File returns the accumulated declaration.
func (b *Builder) File() *Shelffile {
	file := b.file
	return &file
}
