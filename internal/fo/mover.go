package fo

// Mover performs the filesystem mutations of a batch operation. It owns no
// state beyond the filesystem; the caller is responsible for journaling a
// mutation only after the Mover reports success.
type Mover interface {
	// Move relocates source to destination, creating the destination's
	// parent directories as needed. If destination already exists, a
	// counter is inserted before the extension (name_1.ext, name_2.ext, …)
	// until a free name is found. Returns the final destination path.
	Move(source, destination string) (string, error)

	// MoveExact relocates source to exactly destination, creating parent
	// directories as needed. Unlike Move it never renames around a
	// conflict: if destination exists the call fails. Undo uses this to
	// guarantee a restored file lands on its original path.
	MoveExact(source, destination string) error

	// Remove deletes a single file.
	Remove(path string) error
}
