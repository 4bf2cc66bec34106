// Package archive unpacks zipped sites so pages and the fragments they
// include can be composed from a regular directory tree.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// VisitFunc is called for every regular file Walk accepts. Returning an
// error stops the walk and the error is returned from Walk as is.
type VisitFunc func(arc string, f *zip.File) error

// NameFunc maps archive entry to relative slash separated path.
type NameFunc func(f *zip.File) string

// Walk visits regular files of the archive whose names start with prefix.
// Entries which could escape destination directory fail the whole walk.
func Walk(arc, prefix string, visit VisitFunc) error {
	r, err := zip.OpenReader(arc)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !safeName(name) {
			return fmt.Errorf("entry %q escapes archive root", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := visit(arc, f); err != nil {
			return err
		}
	}
	return nil
}

// Unpack extracts all regular files into dir and returns number of files
// written. When name is nil entry names are used as is.
func Unpack(ctx context.Context, arc, dir string, name NameFunc) (int, error) {
	count := 0
	err := Walk(arc, "", func(_ string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := f.FileHeader.Name
		if name != nil {
			rel = name(f)
		}
		// renamed entries are checked again
		if !safeName(rel) {
			return fmt.Errorf("entry %q escapes archive root", rel)
		}
		if err := extract(f, filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return fmt.Errorf("unable to extract %s: %w", rel, err)
		}
		count++
		return nil
	})
	return count, err
}

func extract(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func safeName(name string) bool {
	if name == "" || path.IsAbs(name) || strings.HasPrefix(name, `\`) || filepath.VolumeName(name) != "" {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
