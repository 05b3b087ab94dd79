// Package fs provides the real-filesystem implementations of the core's
// walker and mover collaborators.
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fo-go/internal/fo"
)

// OSWalker enumerates files on the real filesystem.
type OSWalker struct{}

func NewOSWalker() *OSWalker { return &OSWalker{} }

// ResolveDir validates that rawPath names an existing directory and returns
// its absolute path.
func (w *OSWalker) ResolveDir(rawPath string) (string, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fo.WrapOSError(err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", fo.ErrInvalidArgument, absPath)
	}
	return absPath, nil
}

// FindFiles lists the regular files under dir in lexical walk order. The
// whole listing is collected before returning, so callers can mutate the
// tree while iterating without the walk seeing its own effects. Entries
// that disappear or cannot be stat'd mid-walk are skipped.
func (w *OSWalker) FindFiles(dir string, recursive bool) ([]fo.File, error) {
	if !recursive {
		return w.listDir(dir)
	}

	var files []fo.File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fo.WrapOSError(err)
			}
			return nil // skip unreadable subtree entries
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, fo.File{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (w *OSWalker) listDir(dir string) ([]fo.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fo.WrapOSError(err)
	}

	var files []fo.File
	for _, e := range entries {
		if e.IsDir() || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fo.File{
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
