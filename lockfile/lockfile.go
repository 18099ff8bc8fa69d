// Package lockfile reads, writes, and reconciles the pinned result of
// a previous resolution so later runs stay reproducible.
package lockfile

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/blang/semver"
	"github.com/cespare/xxhash/v2"
	goerrors "github.com/pkg/errors"

	"github.com/shelfhq/shelf-cli/errors"
	"github.com/shelfhq/shelf-cli/files"
	"github.com/shelfhq/shelf-cli/location"
	"github.com/shelfhq/shelf-cli/resolver"
)

// DefaultName is the lockfile's filename, written next to the
// Shelffile it was resolved from.
const DefaultName = "Shelffile.lock"

// ErrNoLockfile marks the absence of a lockfile. Absence is a normal
// first-run state, not a failure.
var ErrNoLockfile = goerrors.New("no lockfile present")

// An Entry pins one resolved cookbook to an exact version and the
// location it was installed from.
type Entry struct {
	Name     string              `json:"name"`
	Version  string              `json:"version"`
	Location location.Descriptor `json:"location"`
}

// A Lockfile is the persisted form of a resolution: a fingerprint of
// the Shelffile it was computed from, plus one entry per cookbook.
type Lockfile struct {
	Fingerprint string  `json:"fingerprint"`
	Entries     []Entry `json:"entries"`
}

// Fingerprint hashes the raw bytes of a declaration file. Two
// Shelffiles with the same bytes always produce the same fingerprint.
func Fingerprint(raw []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(raw))
}

// Read loads a lockfile from disk. A missing file returns
// ErrNoLockfile; a present but unreadable file is an error.
func Read(pathElems ...string) (*Lockfile, error) {
	ok, err := files.Exists(pathElems...)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoLockfile
	}
	var lock Lockfile
	if err := files.ReadJSON(&lock, pathElems...); err != nil {
		return nil, goerrors.Wrap(err, "could not parse lockfile")
	}
	return &lock, nil
}

// Write persists the lockfile atomically. Failures are reported as
// LockPersistFailure so callers can warn instead of aborting: the
// resolution that produced this lockfile already succeeded.
func (l *Lockfile) Write(filename string) error {
	sorted := make([]Entry, len(l.Entries))
	copy(sorted, l.Entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	out := Lockfile{Fingerprint: l.Fingerprint, Entries: sorted}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return persistError(filename, err)
	}
	if err := files.WriteAtomic(filename, append(data, '\n'), 0644); err != nil {
		return persistError(filename, err)
	}
	return nil
}

func persistError(filename string, cause error) error {
	return &errors.Error{
		Type:    errors.LockPersistFailure,
		Cause:   cause,
		Message: fmt.Sprintf("could not write lockfile %s", filename),
		Troubleshooting: "The resolved cookbook set is still installed in the cache. " +
			"Check that the directory is writable and re-run to persist the lockfile.",
	}
}

// FromSolution builds the lockfile for a finished resolution. Each
// cookbook is pinned at its resolved version together with the
// descriptor of the location it came from; cookbooks resolved through
// the default location record defaultLoc.
func FromSolution(fingerprint string, solution *resolver.Solution, defaultLoc location.Location) *Lockfile {
	descriptors := make(map[string]location.Descriptor)
	for _, req := range solution.Entries {
		if req.Location == nil {
			continue
		}
		if _, ok := descriptors[req.Name]; !ok {
			descriptors[req.Name] = req.Location.Descriptor()
		}
	}

	lock := &Lockfile{Fingerprint: fingerprint}
	for _, cb := range solution.Sorted() {
		desc, ok := descriptors[cb.Name]
		if !ok {
			desc = defaultLoc.Descriptor()
		}
		lock.Entries = append(lock.Entries, Entry{
			Name:     cb.Name,
			Version:  cb.Version.String(),
			Location: desc,
		})
	}
	return lock
}

// Reconcile merges a prior lockfile into the current requirements.
//
// With no lockfile the requirements pass through untouched. When the
// lockfile's fingerprint matches the current declaration and no pins
// were selected for update, reuse is true and the caller may
// materialize the locked set directly. Otherwise each locked version
// becomes the preferred starting candidate for its requirement, except
// where the declared constraint has moved past it or the name was
// explicitly selected for update.
func Reconcile(lock *Lockfile, requirements []resolver.Requirement, fingerprint string, update []string) (merged []resolver.Requirement, reuse bool) {
	if lock == nil {
		return requirements, false
	}
	if lock.Fingerprint == fingerprint && len(update) == 0 {
		return requirements, true
	}

	updating := make(map[string]bool, len(update))
	for _, name := range update {
		updating[name] = true
	}
	pinned := make(map[string]semver.Version, len(lock.Entries))
	for _, entry := range lock.Entries {
		version, err := semver.Parse(entry.Version)
		if err != nil {
			continue
		}
		pinned[entry.Name] = version
	}

	merged = make([]resolver.Requirement, len(requirements))
	copy(merged, requirements)
	for i := range merged {
		if updating[merged[i].Name] {
			continue
		}
		pin, ok := pinned[merged[i].Name]
		if !ok {
			continue
		}
		if !merged[i].Constraint.SatisfiedBy(pin) {
			continue
		}
		preferred := pin
		merged[i].Preferred = &preferred
	}
	return merged, false
}
