package fo

import (
	"errors"
	"fmt"
	"os"
)

// Error taxonomy for the core. Callers classify failures with errors.Is;
// everything else is an unexpected error and propagates as-is.
var (
	// ErrNotFound marks a missing target directory or file.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks a bad dimension, negative day count,
	// malformed pattern, or similar caller mistake.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAccessDenied marks a permission failure on read, write, or delete.
	ErrAccessDenied = errors.New("access denied")

	// ErrStorage marks a journal or index persistence failure.
	ErrStorage = errors.New("storage error")
)

// WrapOSError translates an os-level error into the package taxonomy,
// keeping the original in the chain. Errors that don't map to a known
// condition are returned unchanged.
func WrapOSError(err error) error {
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	default:
		return err
	}
}
