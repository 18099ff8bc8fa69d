package files

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// WriteTarGz archives and compresses the contents of dir into a gzipped
// tarball at out. Entry names are prefixed with the base name of dir.
func WriteTarGz(dir, out string) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	prefix := filepath.Base(dir)

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	g := gzip.NewWriter(f)
	defer g.Close()

	t := tar.NewWriter(g)
	defer t.Close()

	log.WithField("dir", dir).Debug("archiving directory")
	err = filepath.Walk(dir, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, name)
		if err != nil {
			return err
		}
		if rel == "." || !info.Mode().IsRegular() {
			return nil
		}
		header, err := tar.FileInfoHeader(info, info.Name())
		if err != nil {
			return err
		}
		header.Name = prefix + "/" + filepath.ToSlash(rel)
		if err := t.WriteHeader(header); err != nil {
			return err
		}
		file, err := os.Open(name)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(t, file)
		return err
	})
	if err != nil {
		return err
	}

	if err := t.Flush(); err != nil {
		return err
	}
	if err := g.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// ExtractTarGz unpacks a gzipped tarball into dest. A single top-level
// directory inside the archive is stripped, so an archive of
// `name-1.0.0/...` lands directly in dest. Entries that would escape
// dest are rejected.
func ExtractTarGz(r io.Reader, dest string) error {
	g, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "could not read gzip stream")
	}
	defer g.Close()

	t := tar.NewReader(g)
	for {
		header, err := t.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "could not read tar stream")
		}

		name := stripArchiveRoot(header.Name)
		if name == "" {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return errors.Errorf("archive entry escapes destination: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, t); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}

func stripArchiveRoot(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	i := strings.IndexByte(name, '/')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}
