// Package resolver turns a list of named, constrained, located
// dependency entries into one mutually consistent set of pinned
// cookbooks.
//
// The strategy is a greedy fixpoint over a work queue: the first commit
// to a name is never revisited, matching the registry-authoritative
// model where each name has exactly one authoritative location. A
// later-discovered constraint that an earlier pin cannot satisfy is
// reported as an unresolvable conflict naming both entries; no
// backtracking to a lower earlier pick is attempted.
package resolver

import (
	"fmt"
	"sort"

	"github.com/apex/log"
	"github.com/blang/semver"
	"golang.org/x/sync/errgroup"

	"github.com/shelfhq/shelf-cli/cache"
	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/location"
)

// A Requirement is one demand on a cookbook name: a constraint, the
// location that must serve it, and where the demand came from.
type Requirement struct {
	Name       string
	Constraint cookbook.Constraint
	// Location serving the name; nil means the default registry.
	Location location.Location
	// Groups carries the declaration's tags. Transitive requirements
	// have none; they are never group-filtered.
	Groups []string
	// Preferred is a pin carried over from the lockfile, honored when
	// it still satisfies every constraint on the name.
	Preferred *semver.Version
	// DeclaredBy names the cookbook whose manifest produced this
	// requirement; empty for explicit declarations.
	DeclaredBy string
}

// Describe renders the requirement with its origin for error messages.
func (r Requirement) Describe() string {
	origin := "the Shelffile"
	if r.DeclaredBy != "" {
		origin = r.DeclaredBy
	}
	return fmt.Sprintf("%s (%s) required by %s", r.Name, r.Constraint, origin)
}

// A Solution maps each resolved name to its pinned cookbook, along with
// every requirement (explicit and discovered) that contributed to it,
// in commit order.
type Solution struct {
	Cookbooks map[string]*cookbook.Cookbook
	Entries   []Requirement
}

// Sorted returns the solution's cookbooks ordered by name.
func (s *Solution) Sorted() []*cookbook.Cookbook {
	sorted := make([]*cookbook.Cookbook, 0, len(s.Cookbooks))
	for _, cb := range s.Cookbooks {
		sorted = append(sorted, cb)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// A Conflict reports two requirements on one name that cannot both be
// satisfied by the committed pin.
type Conflict struct {
	Name     string
	Pinned   semver.Version
	Existing Requirement
	Incoming Requirement
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("could not resolve %s: pinned at %s by %s, which does not satisfy %s",
		c.Name, c.Pinned, c.Existing.Describe(), c.Incoming.Describe())
}

// ErrorType marks the conflict as unresolvable for error dispatch.
func (c *Conflict) ErrorType() errors.Type {
	return errors.UnresolvableConflict
}

// A Resolver resolves requirements against locations, installing picked
// versions through the store.
type Resolver struct {
	// Default serves requirements that name no explicit location.
	Default location.Location
	Store   *cache.Store
	// Workers bounds concurrent fetches; zero means a small default.
	Workers int
}

const defaultWorkers = 4

// pin records a committed pick and the requirement that committed it.
type pin struct {
	cookbook *cookbook.Cookbook
	by       Requirement
}

// Resolve runs the fixpoint. Fetches for independent names run
// concurrently; conflict checking and commits happen only on the
// resolution loop, so the first-commit-wins rule stays deterministic.
func (r *Resolver) Resolve(entries []Requirement) (*Solution, error) {
	queue := append([]Requirement(nil), entries...)
	pins := make(map[string]pin)
	var order []Requirement

	for len(queue) > 0 {
		var batch, deferred []Requirement
		inBatch := make(map[string]bool)

		for _, req := range queue {
			if committed, ok := pins[req.Name]; ok {
				if !req.Constraint.SatisfiedBy(committed.cookbook.Version) {
					return nil, &Conflict{
						Name:     req.Name,
						Pinned:   committed.cookbook.Version,
						Existing: committed.by,
						Incoming: req,
					}
				}
				order = append(order, req)
				continue
			}
			if inBatch[req.Name] {
				// Another demand on a name being fetched this round;
				// check it against the pin next round.
				deferred = append(deferred, req)
				continue
			}
			inBatch[req.Name] = true
			batch = append(batch, req)
		}

		picked, err := r.installBatch(batch)
		if err != nil {
			return nil, err
		}

		for i, req := range batch {
			cb := picked[i]
			pins[req.Name] = pin{cookbook: cb, by: req}
			order = append(order, req)
			deferred = append(deferred, discovered(cb)...)
		}
		queue = deferred
	}

	solution := &Solution{
		Cookbooks: make(map[string]*cookbook.Cookbook, len(pins)),
		Entries:   order,
	}
	for name, p := range pins {
		solution.Cookbooks[name] = p.cookbook
	}
	return solution, nil
}

// installBatch fetches and installs every requirement concurrently. The
// first fatal error abandons the remaining work.
func (r *Resolver) installBatch(batch []Requirement) ([]*cookbook.Cookbook, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	picked := make([]*cookbook.Cookbook, len(batch))
	sem := make(chan struct{}, workers)
	var g errgroup.Group
	for i := range batch {
		i := i
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			cb, err := r.install(batch[i])
			if err != nil {
				return err
			}
			picked[i] = cb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return picked, nil
}

// install fetches candidates for one requirement and installs the pick:
// the lockfile-preferred version when it is still served and satisfies
// the constraint, otherwise the highest satisfying version.
func (r *Resolver) install(req Requirement) (*cookbook.Cookbook, error) {
	loc := req.Location
	if loc == nil {
		loc = r.Default
	}

	candidates, err := loc.Fetch(req.Name, req.Constraint)
	if err != nil {
		return nil, err
	}

	chosen := candidates[0]
	if req.Preferred != nil && req.Constraint.SatisfiedBy(*req.Preferred) {
		for _, candidate := range candidates {
			if candidate.Version.EQ(*req.Preferred) {
				chosen = candidate
				break
			}
		}
	}

	log.WithFields(log.Fields{
		"cookbook": req.Name,
		"version":  chosen.Version.String(),
		"location": loc.String(),
	}).Debug("picked version")

	return loc.Install(chosen, r.Store)
}

// discovered turns a cookbook's manifest dependencies into transitive
// requirements, in name order so resolution stays deterministic.
func discovered(cb *cookbook.Cookbook) []Requirement {
	names := make([]string, 0, len(cb.Dependencies))
	for name := range cb.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	reqs := make([]Requirement, 0, len(names))
	for _, name := range names {
		reqs = append(reqs, Requirement{
			Name:       name,
			Constraint: cb.Dependencies[name],
			DeclaredBy: cb.String(),
		})
	}
	return reqs
}
