package cache

import (
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"gopkg.in/src-d/go-git.v4/plumbing/format/gitignore"

	"github.com/shelfhq/shelf-cli/cookbook"
	"github.com/shelfhq/shelf-cli/files"
)

// IgnoreFile is the conventional ignore-pattern file at a cookbook's
// root. Its patterns use gitignore syntax. Absence means no exclusions.
const IgnoreFile = "chefignore"

// Export copies each cookbook into destination/<name>, excluding files
// matched by the cookbook's own ignore file. The ignore file itself is
// never exported.
func Export(cookbooks []*cookbook.Cookbook, destination string) (string, error) {
	for _, cb := range cookbooks {
		matcher, err := ignoreMatcher(cb.Path)
		if err != nil {
			return "", err
		}
		dest := filepath.Join(destination, cb.Name)
		log.WithFields(log.Fields{
			"cookbook": cb.String(),
			"dest":     dest,
		}).Debug("exporting cookbook")

		err = files.CopyDir(cb.Path, dest, func(rel string, isDir bool) bool {
			if rel == IgnoreFile {
				return false
			}
			if matcher == nil {
				return true
			}
			return !matcher.Match(strings.Split(rel, "/"), isDir)
		})
		if err != nil {
			return "", errors.Wrapf(err, "could not export %s", cb.String())
		}
	}
	return destination, nil
}

// ignoreMatcher parses the cookbook's ignore file into a matcher, or
// returns nil when the cookbook has none.
func ignoreMatcher(dir string) (gitignore.Matcher, error) {
	ok, err := files.Exists(dir, IgnoreFile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	contents, err := files.Read(dir, IgnoreFile)
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return gitignore.NewMatcher(patterns), nil
}
