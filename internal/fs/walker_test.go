package fs_test

import (
	"errors"
	"testing"

	"fo-go/internal/fo"
	"fo-go/internal/fs"
	"fo-go/internal/testutil"
)

func TestOSWalker_ResolveDir(t *testing.T) {
	w := fs.NewOSWalker()

	t.Run("resolves an existing directory to an absolute path", func(t *testing.T) {
		dir := t.TempDir()
		got, err := w.ResolveDir(dir)
		if err != nil {
			t.Fatalf("ResolveDir() error = %v", err)
		}
		if got == "" {
			t.Error("ResolveDir() returned an empty path")
		}
	})

	t.Run("missing path returns not found", func(t *testing.T) {
		_, err := w.ResolveDir("/does/not/exist")
		if !errors.Is(err, fo.ErrNotFound) {
			t.Errorf("ResolveDir() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("regular file is not a directory", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "file.txt", "x")
		_, err := w.ResolveDir(path)
		if !errors.Is(err, fo.ErrInvalidArgument) {
			t.Errorf("ResolveDir() error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestOSWalker_FindFiles(t *testing.T) {
	setup := func(t *testing.T) string {
		t.Helper()
		dir := t.TempDir()
		testutil.WriteFile(t, dir, "top.txt", "1")
		testutil.WriteFile(t, dir, "sub/nested.txt", "22")
		testutil.WriteFile(t, dir, "sub/deep/leaf.txt", "333")
		return dir
	}
	w := fs.NewOSWalker()

	t.Run("non-recursive lists only the top level", func(t *testing.T) {
		dir := setup(t)
		files, err := w.FindFiles(dir, false)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("FindFiles() returned %d files, want 1", len(files))
		}
		if files[0].Size != 1 {
			t.Errorf("top.txt size = %d, want 1", files[0].Size)
		}
	})

	t.Run("recursive walks the whole tree", func(t *testing.T) {
		dir := setup(t)
		files, err := w.FindFiles(dir, true)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("FindFiles() returned %d files, want 3", len(files))
		}
		var total int64
		for _, f := range files {
			if f.ModTime.IsZero() {
				t.Errorf("%s has a zero mtime", f.Path)
			}
			total += f.Size
		}
		if total != 6 {
			t.Errorf("total size = %d, want 6", total)
		}
	})

	t.Run("directories are never listed as files", func(t *testing.T) {
		dir := setup(t)
		files, err := w.FindFiles(dir, true)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		for _, f := range files {
			if f.Path == dir {
				t.Errorf("directory %s listed as a file", f.Path)
			}
		}
	})

	t.Run("missing root fails", func(t *testing.T) {
		if _, err := w.FindFiles("/does/not/exist", true); err == nil {
			t.Fatal("FindFiles() error = nil, want error")
		}
	})
}
