// Package version carries the build identity stamped in through
// linker flags by the release pipeline.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver"
)

// Populated through -ldflags at build time. A binary built without
// them identifies itself as a development build.
var (
	BuildType = "development"
	Version   string
	Commit    string
	GoVersion string
)

var ErrIsDevelopment = errors.New("development builds carry no semantic version")

// IsDevelopment reports whether this binary was built outside the
// release pipeline.
func IsDevelopment() bool {
	return BuildType != "release"
}

// String renders the identity shown by `shelf --version`.
func String() string {
	short := ShortString()
	if short == "" {
		short = "unknown"
	}
	return fmt.Sprintf("%s (revision %s, %s)", short, Commit, GoVersion)
}

// ShortString is the version alone: the tag for releases, the commit
// for development builds.
func ShortString() string {
	if IsDevelopment() {
		return Commit
	}
	return Version
}

// Semver parses the release tag, without its leading v.
func Semver() (semver.Version, error) {
	if IsDevelopment() {
		return semver.Version{}, ErrIsDevelopment
	}
	return semver.Parse(strings.TrimPrefix(Version, "v"))
}
