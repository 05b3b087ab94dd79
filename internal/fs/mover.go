package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"fo-go/internal/fo"
)

// copyBlockSize is the buffer size for the cross-filesystem copy fallback.
const copyBlockSize = 64 * 1024

// OSMover performs moves, renames, and deletions on the real filesystem.
type OSMover struct{}

func NewOSMover() *OSMover { return &OSMover{} }

// Move relocates source to destination, inserting a numeric counter before
// the extension until a free name is found. The exists-check-then-rename
// sequence is not atomic against concurrent external writers; the tool
// assumes single-writer access to the tree during a batch.
func (m *OSMover) Move(source, destination string) (string, error) {
	if _, err := os.Stat(source); err != nil {
		return "", fo.WrapOSError(err)
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return "", fo.WrapOSError(err)
	}

	final := destination
	ext := filepath.Ext(destination)
	stem := strings.TrimSuffix(destination, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(final); os.IsNotExist(err) {
			break
		}
		final = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}

	if err := rename(source, final); err != nil {
		return "", err
	}
	return final, nil
}

// MoveExact relocates source to exactly destination. It refuses to
// overwrite: if destination exists, the call fails and nothing changes.
func (m *OSMover) MoveExact(source, destination string) error {
	if _, err := os.Stat(source); err != nil {
		return fo.WrapOSError(err)
	}
	if _, err := os.Stat(destination); err == nil {
		return fmt.Errorf("destination already exists: %s", destination)
	} else if !os.IsNotExist(err) {
		return fo.WrapOSError(err)
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fo.WrapOSError(err)
	}
	return rename(source, destination)
}

// Remove deletes a single file.
func (m *OSMover) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fo.WrapOSError(err)
	}
	return nil
}

// rename moves a file, falling back to copy+delete when source and
// destination live on different filesystems.
func rename(source, destination string) error {
	err := os.Rename(source, destination)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EXDEV) {
		return copyAndRemove(source, destination)
	}
	return fo.WrapOSError(err)
}

func copyAndRemove(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return fo.WrapOSError(err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fo.WrapOSError(err)
	}

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fo.WrapOSError(err)
	}

	buf := make([]byte, copyBlockSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		os.Remove(destination)
		return fmt.Errorf("copying across filesystems: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(destination)
		return fo.WrapOSError(err)
	}

	if err := os.Remove(source); err != nil {
		return fo.WrapOSError(err)
	}
	return nil
}
