package files_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfhq/shelf-cli/files"
)

func TestNonExistentParentIsNotErr(t *testing.T) {
	ok, err := files.Exists(filepath.Join("testdata", "parent", "does", "not", "exist", "file"))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteAtomic(t *testing.T) {
	dir, err := ioutil.TempDir("", "shelf-files-")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "nested", "out.json")
	err = files.WriteAtomic(name, []byte(`{"ok":true}`), 0644)
	assert.NoError(t, err)

	contents, err := files.Read(name)
	assert.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(contents))

	// Overwriting leaves no temporary files behind.
	err = files.WriteAtomic(name, []byte(`{"ok":false}`), 0644)
	assert.NoError(t, err)
	entries, err := ioutil.ReadDir(filepath.Dir(name))
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFindUp(t *testing.T) {
	root, err := ioutil.TempDir("", "shelf-findup-")
	assert.NoError(t, err)
	defer os.RemoveAll(root)

	// The walk continues past root, so the marker name must not
	// collide with anything in the enclosing temp directories.
	marker := ".marker-" + filepath.Base(root)
	nested := filepath.Join(root, "a", "b", "c")
	assert.NoError(t, os.MkdirAll(nested, 0755))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(root, "a", marker), nil, 0644))

	hasMarker := func(dir string) (bool, error) {
		return files.Exists(dir, marker)
	}

	found, err := files.FindUp(nested, hasMarker)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a"), found)

	// The nearest match wins over matches further up.
	assert.NoError(t, ioutil.WriteFile(filepath.Join(nested, marker), nil, 0644))
	found, err = files.FindUp(nested, hasMarker)
	assert.NoError(t, err)
	assert.Equal(t, nested, found)

	_, err = files.FindUp(root, hasMarker)
	assert.Equal(t, files.ErrNotFoundUpward, err)
}

func TestCopyDirFilter(t *testing.T) {
	src, err := ioutil.TempDir("", "shelf-copy-src-")
	assert.NoError(t, err)
	defer os.RemoveAll(src)
	dst, err := ioutil.TempDir("", "shelf-copy-dst-")
	assert.NoError(t, err)
	defer os.RemoveAll(dst)

	assert.NoError(t, os.MkdirAll(filepath.Join(src, "spec"), 0755))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(src, "keep.txt"), []byte("keep"), 0644))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(src, "spec", "drop.txt"), []byte("drop"), 0644))

	err = files.CopyDir(src, dst, func(rel string, isDir bool) bool {
		return rel != "spec"
	})
	assert.NoError(t, err)

	kept, err := files.Exists(dst, "keep.txt")
	assert.NoError(t, err)
	assert.True(t, kept)
	dropped, err := files.ExistsFolder(dst, "spec")
	assert.NoError(t, err)
	assert.False(t, dropped)
}

func TestTarGzRoundTrip(t *testing.T) {
	src, err := ioutil.TempDir("", "shelf-tar-src-")
	assert.NoError(t, err)
	defer os.RemoveAll(src)
	out, err := ioutil.TempDir("", "shelf-tar-out-")
	assert.NoError(t, err)
	defer os.RemoveAll(out)

	assert.NoError(t, ioutil.WriteFile(filepath.Join(src, "metadata.json"), []byte(`{"name":"ntp"}`), 0644))

	tarball := filepath.Join(out, "bundle.tar.gz")
	assert.NoError(t, files.WriteTarGz(src, tarball))

	f, err := os.Open(tarball)
	assert.NoError(t, err)
	defer f.Close()

	dest := filepath.Join(out, "extracted")
	assert.NoError(t, files.ExtractTarGz(f, dest))

	contents, err := files.Read(dest, "metadata.json")
	assert.NoError(t, err)
	assert.Equal(t, `{"name":"ntp"}`, string(contents))
}
