package files

import (
	"errors"
	"path/filepath"
)

// ErrNotFoundUpward reports that no ancestor directory satisfied a
// FindUp predicate.
var ErrNotFoundUpward = errors.New("not found in any ancestor directory")

// FindUp searches startdir and each of its ancestors, nearest first,
// for a directory satisfying the predicate. It returns the absolute
// path of the first match. When the filesystem root is passed without
// a match, it returns ErrNotFoundUpward.
func FindUp(startdir string, predicate func(dir string) (bool, error)) (string, error) {
	dir, err := filepath.Abs(startdir)
	if err != nil {
		return "", err
	}

	for {
		ok, err := predicate(dir)
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFoundUpward
		}
		dir = parent
	}
}
