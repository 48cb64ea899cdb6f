// Package archive expands zip archives onto a billy filesystem.
package archive

import (
	"archive/zip"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

var ErrUnsafePath = errors.New("unsafe path in archive")

type Extractor struct {
	Files billy.Filesystem
	Log   zerolog.Logger
}

// Extract expands the archive at archivePath into destDir, creating
// parent directories as needed. Entries escaping destDir are rejected.
func (e *Extractor) Extract(archivePath, destDir string) error {
	f, err := e.Files.Open(archivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.Log.Warn().Err(cerr).Msgf("close %q", archivePath)
		}
	}()

	fi, err := e.Files.Stat(archivePath)
	if err != nil {
		return err
	}
	z, err := zip.NewReader(f, fi.Size())
	if err != nil {
		return err
	}
	for _, zf := range z.File {
		// If the last char in the file name is a slash, the entry
		// represents a directory. Those are created implicitly by
		// MkdirAll for the files below them.
		l := len(zf.Name)
		if l > 0 && zf.Name[l-1] == '/' {
			continue
		}
		name, err := safeJoin(destDir, zf.Name)
		if err != nil {
			return err
		}
		if err := e.writeEntry(zf, name); err != nil {
			return err
		}
	}
	return nil
}

func safeJoin(destDir, name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", ErrUnsafePath
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
		return "", ErrUnsafePath
	}
	return path.Join(destDir, clean), nil
}

func (e *Extractor) writeEntry(zf *zip.File, name string) error {
	r, err := zf.Open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			e.Log.Warn().Err(cerr).Msgf("close entry %q", zf.Name)
		}
	}()

	if dir := path.Dir(name); dir != "." {
		if err := e.Files.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	w, err := e.Files.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
