package fo

import "time"

// File is one enumerated file with cached stat data. Records are ephemeral:
// they are produced by a Walker for the duration of one batch operation and
// never persisted.
type File struct {
	Path    string // absolute
	Size    int64
	ModTime time.Time
}

// Walker enumerates files for batch operations. The core never walks
// directories itself; implementations decide traversal mechanics, but must
// return regular files only, in a stable directory-walk order, with the
// full listing collected before the caller starts mutating the tree.
type Walker interface {
	// ResolveDir validates that rawPath names an existing directory and
	// returns its absolute path. Missing paths map to ErrNotFound,
	// non-directories to ErrInvalidArgument.
	ResolveDir(rawPath string) (string, error)

	// FindFiles lists the regular files under dir. When recursive is false
	// only direct children are returned.
	FindFiles(dir string, recursive bool) ([]File, error)
}
