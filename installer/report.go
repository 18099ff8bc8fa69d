package installer

import (
	"sort"

	"github.com/blang/semver"

	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/lockfile"
	"github.com/shelfhq/shelf-cli/shelffile"
)

// An OutdatedEntry reports a locked cookbook whose location serves a
// newer version still allowed by the declared constraint.
type OutdatedEntry struct {
	Name       string
	Locked     semver.Version
	Latest     semver.Version
	Constraint cookbook.Constraint
}

// Outdated compares each locked pin against the newest version its
// location serves within the declared constraint. It requires an
// existing lockfile.
func (i *Installer) Outdated() ([]OutdatedEntry, error) {
	defer i.factory.Cleanup()

	dir, err := i.projectDir()
	if err != nil {
		return nil, err
	}
	file, err := shelffile.Read(dir)
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Read(dir, lockfile.DefaultName)
	if err != nil {
		return nil, err
	}

	constraints := make(map[string]cookbook.Constraint, len(file.Dependencies))
	for _, dep := range file.Dependencies {
		constraints[dep.Name] = dep.Constraint
	}

	var outdated []OutdatedEntry
	for _, entry := range lock.Entries {
		constraint, declared := constraints[entry.Name]
		if !declared {
			// Transitive pins float with their parents; only
			// directly declared cookbooks are reported.
			continue
		}
		locked, err := semver.Parse(entry.Version)
		if err != nil {
			continue
		}

		loc, err := i.factory.FromDescriptor(entry.Location)
		if err != nil {
			return nil, err
		}
		candidates, err := loc.Fetch(entry.Name, constraint)
		if errors.Is(err, errors.NoSatisfyingVersion) || errors.Is(err, errors.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			continue
		}
		latest := candidates[0].Version
		if latest.GT(locked) {
			outdated = append(outdated, OutdatedEntry{
				Name:       entry.Name,
				Locked:     locked,
				Latest:     latest,
				Constraint: constraint,
			})
		}
	}
	sort.Slice(outdated, func(a, b int) bool { return outdated[a].Name < outdated[b].Name })
	return outdated, nil
}
